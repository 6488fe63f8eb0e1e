/*
Copyright 2024 Ledgerbook Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package ledgerbook

import (
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/ledgerbook/ledgerbook/internal/ledgererr"
	"github.com/ledgerbook/ledgerbook/model"
)

// maxSuggestionDistance bounds how far a typo may be from a real account number
// before it stops being offered as a suggestion.
const maxSuggestionDistance = 2

// Directory is the in-memory set of accounts keyed by account number.
// It owns the account id sequence and the system-wide transaction recorder.
// A Directory is not safe for concurrent use; the session runs every command
// to completion before accepting the next one.
type Directory struct {
	accounts map[string]*model.Account
	order    []*model.Account
	ids      *model.Sequence
	recorder *model.Recorder
}

// NewDirectory creates an empty directory whose counters start at 1.
func NewDirectory() *Directory {
	return &Directory{
		accounts: make(map[string]*model.Account),
		ids:      model.NewSequence(0),
		recorder: model.NewRecorder(model.NewSequence(0)),
	}
}

// SetClock replaces the clock used to stamp new entries.
func (d *Directory) SetClock(now func() time.Time) {
	d.recorder.Now = now
}

// CreateAccount adds a new unblocked account with an empty history.
// On failure the directory is left unchanged.
func (d *Directory) CreateAccount(name, number string, initialBalance decimal.Decimal) (*model.Account, error) {
	name = strings.TrimSpace(name)
	number = strings.TrimSpace(number)
	if name == "" {
		return nil, ledgererr.New(ledgererr.ErrInvalidInput, "account name is required", nil)
	}
	if number == "" {
		return nil, ledgererr.New(ledgererr.ErrInvalidInput, "account number is required", nil)
	}
	if initialBalance.IsNegative() {
		return nil, ledgererr.New(ledgererr.ErrInvalidAmount,
			fmt.Sprintf("initial balance cannot be negative, got %s", initialBalance), nil)
	}
	if _, exists := d.accounts[number]; exists {
		return nil, ledgererr.New(ledgererr.ErrDuplicateAccountNumber,
			fmt.Sprintf("account number %s is already in use", number), number)
	}

	account := model.NewAccount(d.ids.Next(), name, number, initialBalance, d.recorder)
	d.add(account)
	return account, nil
}

// Find looks an account up by number.
func (d *Directory) Find(number string) (*model.Account, error) {
	account, ok := d.accounts[strings.TrimSpace(number)]
	if !ok {
		msg := fmt.Sprintf("account %s not found", number)
		suggestions := d.Suggest(number)
		if len(suggestions) > 0 {
			msg = fmt.Sprintf("%s, did you mean %s?", msg, strings.Join(suggestions, " or "))
		}
		return nil, ledgererr.New(ledgererr.ErrNotFound, msg, suggestions)
	}
	return account, nil
}

// Accounts returns every account in creation order. The slice is a copy.
func (d *Directory) Accounts() []*model.Account {
	out := make([]*model.Account, len(d.order))
	copy(out, d.order)
	return out
}

// All yields every account in creation order.
func (d *Directory) All() iter.Seq[*model.Account] {
	return func(yield func(*model.Account) bool) {
		for _, a := range d.order {
			if !yield(a) {
				return
			}
		}
	}
}

func (d *Directory) Len() int {
	return len(d.order)
}

// NextAccountID and NextTransactionID report the ids the counters would hand out next.
func (d *Directory) NextAccountID() int64     { return d.ids.Peek() }
func (d *Directory) NextTransactionID() int64 { return d.recorder.Transactions.Peek() }

// Suggest returns known account numbers within a small edit distance of number,
// closest first.
func (d *Directory) Suggest(number string) []string {
	type candidate struct {
		number   string
		distance int
	}
	var candidates []candidate
	for _, a := range d.order {
		distance := levenshtein.DistanceForStrings([]rune(number), []rune(a.Number()), levenshtein.DefaultOptions)
		if distance <= maxSuggestionDistance {
			candidates = append(candidates, candidate{number: a.Number(), distance: distance})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.number)
	}
	return out
}

// Snapshot exports every account, in creation order.
func (d *Directory) Snapshot() model.Snapshot {
	snap := model.Snapshot{Accounts: make([]model.AccountRecord, 0, len(d.order))}
	for _, a := range d.order {
		snap.Accounts = append(snap.Accounts, a.Record())
	}
	return snap
}

// Restore builds a directory from a snapshot. Both counters resume from the highest
// id present, so ids handed out after a reload never collide with persisted ones.
func Restore(snap model.Snapshot) (*Directory, error) {
	d := NewDirectory()
	legs := make(map[int64][]leg)
	accountIDs := make(map[int64]string)

	for _, rec := range snap.Accounts {
		account, err := model.RestoreAccount(rec, d.recorder)
		if err != nil {
			return nil, err
		}
		if _, exists := d.accounts[account.Number()]; exists {
			return nil, corruptf("account number %s appears more than once", account.Number())
		}
		if other, exists := accountIDs[account.ID()]; exists {
			return nil, corruptf("accounts %s and %s share id %d", other, account.Number(), account.ID())
		}
		accountIDs[account.ID()] = account.Number()

		for _, e := range rec.History {
			legs[e.TransactionID] = append(legs[e.TransactionID], leg{owner: account.Number(), entry: e})
			d.recorder.Transactions.Observe(e.TransactionID)
		}
		d.ids.Observe(account.ID())
		d.add(account)
	}

	for id, entries := range legs {
		if err := checkLegs(id, entries); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// leg is a history entry together with the number of the account holding it.
type leg struct {
	owner string
	entry model.Entry
}

// checkLegs accepts a transaction id used by a single entry, or by exactly the two
// matching legs of one transfer between two different accounts.
func checkLegs(id int64, legs []leg) error {
	switch len(legs) {
	case 1:
		return nil
	case 2:
		a, b := legs[0], legs[1]
		if !a.entry.Kind.IsTransfer() || !b.entry.Kind.IsTransfer() || a.entry.Kind == b.entry.Kind || !a.entry.Amount.Equal(b.entry.Amount) {
			break
		}
		if a.owner == b.owner {
			return corruptf("transaction id %d transfers from account %s to itself", id, a.owner)
		}
		if a.entry.Counterparty != b.owner || b.entry.Counterparty != a.owner {
			return corruptf("transaction id %d links %s and %s but names %q and %q as counterparties",
				id, a.owner, b.owner, a.entry.Counterparty, b.entry.Counterparty)
		}
		return nil
	}
	return corruptf("transaction id %d is used by %d unrelated entries", id, len(legs))
}

func (d *Directory) add(account *model.Account) {
	d.accounts[account.Number()] = account
	d.order = append(d.order, account)
}

func corruptf(format string, args ...interface{}) error {
	return ledgererr.New(ledgererr.ErrCorruptData, fmt.Sprintf(format, args...), nil)
}
