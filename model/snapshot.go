package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/ledgererr"
)

// AccountRecord is the full persisted state of one account.
type AccountRecord struct {
	ID             int64
	Name           string
	Number         string
	InitialBalance decimal.Decimal
	Balance        decimal.Decimal
	Blocked        bool
	History        []Entry
}

// Snapshot is the persisted state of a whole directory, accounts in creation order.
type Snapshot struct {
	Accounts []AccountRecord
}

// Record exports the account state. The history is copied.
func (a *Account) Record() AccountRecord {
	return AccountRecord{
		ID:             a.id,
		Name:           a.name,
		Number:         a.number,
		InitialBalance: a.initialBalance,
		Balance:        a.balance,
		Blocked:        a.blocked,
		History:        a.History(),
	}
}

// RestoreAccount rebuilds an account from a record, rejecting records that break the
// account invariants with a CorruptData error.
func RestoreAccount(r AccountRecord, recorder *Recorder) (*Account, error) {
	if r.ID <= 0 {
		return nil, corrupt("account %q has invalid id %d", r.Number, r.ID)
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Number = strings.TrimSpace(r.Number)
	if r.Name == "" || r.Number == "" {
		return nil, corrupt("account %d is missing its name or number", r.ID)
	}
	if r.InitialBalance.IsNegative() {
		return nil, corrupt("account %s has a negative initial balance", r.Number)
	}
	for i, e := range r.History {
		if !e.Kind.Valid() {
			return nil, corrupt("account %s entry %d has unknown kind %q", r.Number, i, e.Kind)
		}
		if !e.Amount.IsPositive() {
			return nil, corrupt("account %s entry %d has non-positive amount %s", r.Number, i, e.Amount)
		}
		if e.TransactionID <= 0 {
			return nil, corrupt("account %s entry %d has invalid transaction id %d", r.Number, i, e.TransactionID)
		}
	}

	a := NewAccount(r.ID, r.Name, r.Number, r.InitialBalance, recorder)
	a.balance = r.Balance
	a.blocked = r.Blocked
	a.history = make([]Entry, len(r.History))
	copy(a.history, r.History)

	if err := a.Verify(); err != nil {
		return nil, err
	}
	return a, nil
}

func corrupt(format string, args ...interface{}) error {
	return ledgererr.New(ledgererr.ErrCorruptData, fmt.Sprintf(format, args...), nil)
}
