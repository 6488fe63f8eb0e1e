package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/ledgererr"
)

// Account is a named, numbered balance with an append-only history and a block flag.
// Its state only changes through Deposit, Withdraw, Transfer and Block.
type Account struct {
	id             int64
	name           string
	number         string
	initialBalance decimal.Decimal
	balance        decimal.Decimal
	blocked        bool
	history        []Entry
	recorder       *Recorder
}

// NewAccount builds an unblocked account with an empty history. Validation of the
// arguments is the Directory's job.
func NewAccount(id int64, name, number string, initialBalance decimal.Decimal, recorder *Recorder) *Account {
	if recorder == nil {
		recorder = NewRecorder(nil)
	}
	return &Account{
		id:             id,
		name:           name,
		number:         number,
		initialBalance: initialBalance,
		balance:        initialBalance,
		recorder:       recorder,
	}
}

func (a *Account) ID() int64                       { return a.id }
func (a *Account) Name() string                    { return a.name }
func (a *Account) Number() string                  { return a.number }
func (a *Account) InitialBalance() decimal.Decimal { return a.initialBalance }
func (a *Account) Balance() decimal.Decimal        { return a.balance }
func (a *Account) IsBlocked() bool                 { return a.blocked }

// History returns a copy of the entries in chronological order.
func (a *Account) History() []Entry {
	out := make([]Entry, len(a.history))
	copy(out, a.history)
	return out
}

// Len is the number of entries in the history.
func (a *Account) Len() int {
	return len(a.history)
}

func (a *Account) String() string {
	return fmt.Sprintf("%s (%s)", a.name, a.number)
}

// Block stops every further mutation. Calling it again is a no-op.
func (a *Account) Block() {
	a.blocked = true
}

// Deposit credits amount and records a deposit entry.
func (a *Account) Deposit(amount decimal.Decimal) (Entry, error) {
	if err := checkPositive(amount); err != nil {
		return Entry{}, err
	}
	if err := a.checkActive(); err != nil {
		return Entry{}, err
	}

	id, ts := a.recorder.stamp()
	entry := Entry{TransactionID: id, Timestamp: ts, Kind: Deposit, Label: "deposit", Amount: amount}
	a.balance = a.balance.Add(amount)
	a.history = append(a.history, entry)
	return entry, nil
}

// Withdraw debits amount and records a withdrawal entry. The balance never goes negative.
func (a *Account) Withdraw(amount decimal.Decimal) (Entry, error) {
	if err := checkPositive(amount); err != nil {
		return Entry{}, err
	}
	if err := a.checkActive(); err != nil {
		return Entry{}, err
	}
	if err := a.checkFunds(amount); err != nil {
		return Entry{}, err
	}

	id, ts := a.recorder.stamp()
	entry := Entry{TransactionID: id, Timestamp: ts, Kind: Withdrawal, Label: "withdrawal", Amount: amount}
	a.balance = a.balance.Sub(amount)
	a.history = append(a.history, entry)
	return entry, nil
}

// Transfer moves amount from a to target. Both legs carry the same transaction id.
// Nothing changes on either side unless every check passes.
func (a *Account) Transfer(target *Account, amount decimal.Decimal) (Entry, Entry, error) {
	if err := checkPositive(amount); err != nil {
		return Entry{}, Entry{}, err
	}
	if target == nil {
		return Entry{}, Entry{}, ledgererr.New(ledgererr.ErrInvalidInput, "transfer target is required", nil)
	}
	if target == a || target.number == a.number {
		return Entry{}, Entry{}, ledgererr.Newf(ledgererr.ErrInvalidInput, "cannot transfer from account %s to itself", a.number)
	}
	if err := a.checkActive(); err != nil {
		return Entry{}, Entry{}, err
	}
	if err := target.checkActive(); err != nil {
		return Entry{}, Entry{}, err
	}
	if err := a.checkFunds(amount); err != nil {
		return Entry{}, Entry{}, err
	}

	id, ts := a.recorder.stamp()
	out := Entry{
		TransactionID: id,
		Timestamp:     ts,
		Kind:          TransferOut,
		Counterparty:  target.number,
		Label:         fmt.Sprintf("transfer to %s", target),
		Amount:        amount,
	}
	in := Entry{
		TransactionID: id,
		Timestamp:     ts,
		Kind:          TransferIn,
		Counterparty:  a.number,
		Label:         fmt.Sprintf("transfer from %s", a),
		Amount:        amount,
	}

	a.balance = a.balance.Sub(amount)
	target.balance = target.balance.Add(amount)
	a.history = append(a.history, out)
	target.history = append(target.history, in)
	return out, in, nil
}

// Verify checks the balance against the initial balance and the history.
func (a *Account) Verify() error {
	if a.balance.IsNegative() {
		return ledgererr.New(ledgererr.ErrCorruptData, fmt.Sprintf("account %s has a negative balance", a.number), a.balance.String())
	}
	expected := a.initialBalance.Add(SignedSum(a.history))
	if !expected.Equal(a.balance) {
		return ledgererr.New(ledgererr.ErrCorruptData,
			fmt.Sprintf("account %s balance %s does not match its history (%s)", a.number, a.balance, expected),
			nil)
	}
	return nil
}

func (a *Account) checkActive() error {
	if a.blocked {
		return ledgererr.New(ledgererr.ErrAccountBlocked, fmt.Sprintf("account %s is blocked", a.number), a.number)
	}
	return nil
}

func (a *Account) checkFunds(amount decimal.Decimal) error {
	if amount.GreaterThan(a.balance) {
		return ledgererr.New(ledgererr.ErrInvalidAmount,
			fmt.Sprintf("insufficient funds in account %s: balance %s, requested %s", a.number, a.balance, amount),
			nil)
	}
	return nil
}

func checkPositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ledgererr.New(ledgererr.ErrInvalidAmount, fmt.Sprintf("amount must be greater than zero, got %s", amount), nil)
	}
	return nil
}
