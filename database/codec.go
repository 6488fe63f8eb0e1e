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

package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/ledgererr"
	"github.com/ledgerbook/ledgerbook/model"
)

// legacyTimeLayout is how the first version of the ledger stamped its history.
const legacyTimeLayout = "2006-01-02 15:04:05"

// legacyScale is the number of decimal places kept from the first version's amounts.
// That version stored binary floats, so 0.1 + 0.7 was written as 0.7999999999999999.
const legacyScale = 10

// accountRecord is one element of the top-level JSON array in the data file.
type accountRecord struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	AccountNumber  string        `json:"account_number"`
	InitialBalance json.Number   `json:"initial_balance,omitempty"`
	Balance        json.Number   `json:"balance"`
	Blocked        bool          `json:"blocked"`
	History        []entryRecord `json:"history"`
}

type entryRecord struct {
	TransactionID int64       `json:"transaction_id"`
	Timestamp     string      `json:"timestamp"`
	Kind          string      `json:"kind"`
	Counterparty  string      `json:"counterparty,omitempty"`
	Label         string      `json:"label,omitempty"`
	Amount        json.Number `json:"amount"`
}

// legacyRecord is the account layout written by the first version of the ledger, which dumped
// its objects' attributes verbatim.
type legacyRecord struct {
	ID      int64         `json:"_id"`
	Name    string        `json:"nom"`
	Number  string        `json:"numero_compte"`
	Balance json.Number   `json:"_solde"`
	Blocked bool          `json:"_compte_bloque"`
	History []legacyEntry `json:"_historique_transactions"`
}

type legacyEntry struct {
	TransactionID int64       `json:"id_transaction"`
	Timestamp     string      `json:"horodatage"`
	Type          string      `json:"type"`
	Amount        json.Number `json:"montant"`
}

// EncodeSnapshot serializes a snapshot as an indented JSON array of account records.
// An empty snapshot encodes as [].
func EncodeSnapshot(snap model.Snapshot) ([]byte, error) {
	records := make([]accountRecord, 0, len(snap.Accounts))
	for _, a := range snap.Accounts {
		rec := accountRecord{
			ID:             a.ID,
			Name:           a.Name,
			AccountNumber:  a.Number,
			InitialBalance: json.Number(a.InitialBalance.String()),
			Balance:        json.Number(a.Balance.String()),
			Blocked:        a.Blocked,
			History:        make([]entryRecord, 0, len(a.History)),
		}
		for _, e := range a.History {
			rec.History = append(rec.History, entryRecord{
				TransactionID: e.TransactionID,
				Timestamp:     e.Timestamp.Format(time.RFC3339),
				Kind:          string(e.Kind),
				Counterparty:  e.Counterparty,
				Label:         e.Label,
				Amount:        json.Number(e.Amount.String()),
			})
		}
		records = append(records, rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, ledgererr.New(ledgererr.ErrStorage, "failed to encode ledger", err.Error())
	}
	return append(data, '\n'), nil
}

// DecodeSnapshot parses the data file format. Records written by the first version
// are imported as well; their transaction ids are reassigned because that version
// restarted its counter on every run.
// Ids that are missing from the input are allocated above the highest id present.
func DecodeSnapshot(data []byte) (model.Snapshot, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return model.Snapshot{}, ledgererr.New(ledgererr.ErrCorruptData, "ledger file is not a JSON array of accounts", err.Error())
	}
	if raws == nil {
		return model.Snapshot{}, ledgererr.New(ledgererr.ErrCorruptData, "ledger file is not a JSON array of accounts", "null")
	}

	snap := model.Snapshot{Accounts: make([]model.AccountRecord, 0, len(raws))}
	for i, raw := range raws {
		rec, err := decodeAccount(raw)
		if err != nil {
			return model.Snapshot{}, ledgererr.New(ledgererr.ErrCorruptData,
				fmt.Sprintf("account record %d: %s", i, messageOf(err)), ledgererr.DetailsOf(err))
		}
		snap.Accounts = append(snap.Accounts, rec)
	}

	allocateMissingIDs(&snap)
	return snap, nil
}

func decodeAccount(raw json.RawMessage) (model.AccountRecord, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return model.AccountRecord{}, corrupt("not a JSON object", err)
	}
	if _, legacy := keys["numero_compte"]; legacy {
		return decodeLegacyAccount(raw)
	}

	var rec accountRecord
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&rec); err != nil {
		return model.AccountRecord{}, corrupt("malformed account", err)
	}

	balance, err := parseAmount("balance", rec.Balance)
	if err != nil {
		return model.AccountRecord{}, err
	}

	out := model.AccountRecord{
		ID:      rec.ID,
		Name:    rec.Name,
		Number:  rec.AccountNumber,
		Balance: balance,
		Blocked: rec.Blocked,
		History: make([]model.Entry, 0, len(rec.History)),
	}
	for i, e := range rec.History {
		entry, err := decodeEntry(e)
		if err != nil {
			return model.AccountRecord{}, corrupt(fmt.Sprintf("history entry %d", i), err)
		}
		out.History = append(out.History, entry)
	}

	// Files holding only name, number, balance and blocked carry no initial balance;
	// derive it from the history so the balance invariant holds.
	if rec.InitialBalance == "" {
		out.InitialBalance = balance.Sub(model.SignedSum(out.History))
	} else {
		out.InitialBalance, err = parseAmount("initial_balance", rec.InitialBalance)
		if err != nil {
			return model.AccountRecord{}, err
		}
	}
	return out, nil
}

func decodeEntry(e entryRecord) (model.Entry, error) {
	ts, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return model.Entry{}, corrupt("bad timestamp", err)
	}
	amount, err := parseAmount("amount", e.Amount)
	if err != nil {
		return model.Entry{}, err
	}
	kind := model.EntryKind(e.Kind)
	if !kind.Valid() {
		return model.Entry{}, corrupt(fmt.Sprintf("unknown kind %q", e.Kind), nil)
	}
	return model.Entry{
		TransactionID: e.TransactionID,
		Timestamp:     ts,
		Kind:          kind,
		Counterparty:  e.Counterparty,
		Label:         e.Label,
		Amount:        amount,
	}, nil
}

func decodeLegacyAccount(raw json.RawMessage) (model.AccountRecord, error) {
	var rec legacyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.AccountRecord{}, corrupt("malformed legacy account", err)
	}
	balance, err := parseAmount("_solde", rec.Balance)
	if err != nil {
		return model.AccountRecord{}, err
	}
	balance = balance.Round(legacyScale)

	out := model.AccountRecord{
		ID:      rec.ID,
		Name:    rec.Name,
		Number:  rec.Number,
		Balance: balance,
		Blocked: rec.Blocked,
		History: make([]model.Entry, 0, len(rec.History)),
	}
	for i, e := range rec.History {
		ts, err := time.ParseInLocation(legacyTimeLayout, e.Timestamp, time.Local)
		if err != nil {
			return model.AccountRecord{}, corrupt(fmt.Sprintf("legacy entry %d has a bad timestamp", i), err)
		}
		amount, err := parseAmount("montant", e.Amount)
		if err != nil {
			return model.AccountRecord{}, err
		}
		amount = amount.Round(legacyScale)
		kind, label, err := legacyKind(e.Type)
		if err != nil {
			return model.AccountRecord{}, err
		}
		out.History = append(out.History, model.Entry{Timestamp: ts, Kind: kind, Label: label, Amount: amount})
	}
	out.InitialBalance = balance.Sub(model.SignedSum(out.History))
	return out, nil
}

// legacyKind maps the legacy French labels onto entry kinds. Transfer labels name
// the counterparty, which is kept as the entry label.
func legacyKind(label string) (model.EntryKind, string, error) {
	switch {
	case label == "Dépôt":
		return model.Deposit, "deposit", nil
	case label == "Retrait":
		return model.Withdrawal, "withdrawal", nil
	case strings.HasPrefix(label, "Transfert vers "):
		return model.TransferOut, "transfer to " + strings.TrimPrefix(label, "Transfert vers "), nil
	case strings.HasPrefix(label, "Transfert de "):
		return model.TransferIn, "transfer from " + strings.TrimPrefix(label, "Transfert de "), nil
	}
	return "", "", corrupt(fmt.Sprintf("unknown legacy transaction type %q", label), nil)
}

// allocateMissingIDs gives legacy records and entries fresh ids above every id already present.
func allocateMissingIDs(snap *model.Snapshot) {
	accounts := model.NewSequence(0)
	transactions := model.NewSequence(0)
	for _, a := range snap.Accounts {
		accounts.Observe(a.ID)
		for _, e := range a.History {
			transactions.Observe(e.TransactionID)
		}
	}
	for i := range snap.Accounts {
		a := &snap.Accounts[i]
		if a.ID == 0 {
			a.ID = accounts.Next()
		}
		for j := range a.History {
			if a.History[j].TransactionID == 0 {
				a.History[j].TransactionID = transactions.Next()
			}
		}
	}
}

func parseAmount(field string, n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Decimal{}, corrupt(fmt.Sprintf("%s is missing", field), nil)
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, corrupt(fmt.Sprintf("%s is not a number", field), err)
	}
	return d, nil
}

func corrupt(message string, cause error) error {
	var details interface{}
	if cause != nil {
		message = fmt.Sprintf("%s: %s", message, messageOf(cause))
		details = cause.Error()
	}
	return ledgererr.New(ledgererr.ErrCorruptData, message, details)
}

// messageOf strips the code prefix from ledger errors so nested messages read naturally.
func messageOf(err error) string {
	if le, ok := err.(ledgererr.LedgerError); ok {
		return le.Message
	}
	return err.Error()
}
