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
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/ledgererr"
	"github.com/ledgerbook/ledgerbook/model"
)

// SQLDatasource keeps the ledger in a local SQLite database.
type SQLDatasource struct {
	Conn *sql.DB
	DSN  string
}

func (d *SQLDatasource) Describe() string {
	return "sqlite:" + d.DSN
}

func (d *SQLDatasource) Close() error {
	if d.Conn == nil {
		return nil
	}
	return d.Conn.Close()
}

// LoadSnapshot reads every account and its entries. An empty database is an empty ledger.
func (d *SQLDatasource) LoadSnapshot(ctx context.Context) (model.Snapshot, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, name, account_number, initial_balance, balance, blocked
		FROM accounts
		ORDER BY position
	`)
	if err != nil {
		return model.Snapshot{}, storageError("failed to query accounts", err)
	}
	defer rows.Close()

	snap := model.Snapshot{}
	index := make(map[int64]int)
	for rows.Next() {
		var (
			rec              model.AccountRecord
			initial, balance string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Number, &initial, &balance, &rec.Blocked); err != nil {
			return model.Snapshot{}, storageError("failed to scan account", err)
		}
		if rec.InitialBalance, err = decimal.NewFromString(initial); err != nil {
			return model.Snapshot{}, corrupt("account "+rec.Number+" has a malformed initial balance", err)
		}
		if rec.Balance, err = decimal.NewFromString(balance); err != nil {
			return model.Snapshot{}, corrupt("account "+rec.Number+" has a malformed balance", err)
		}
		index[rec.ID] = len(snap.Accounts)
		snap.Accounts = append(snap.Accounts, rec)
	}
	if err := rows.Err(); err != nil {
		return model.Snapshot{}, storageError("failed to iterate accounts", err)
	}

	entries, err := d.Conn.QueryContext(ctx, `
		SELECT account_id, transaction_id, timestamp, kind, counterparty, label, amount
		FROM entries
		ORDER BY account_id, position
	`)
	if err != nil {
		return model.Snapshot{}, storageError("failed to query entries", err)
	}
	defer entries.Close()

	for entries.Next() {
		var (
			accountID         int64
			entry             model.Entry
			timestamp, amount string
			kind              string
		)
		if err := entries.Scan(&accountID, &entry.TransactionID, &timestamp, &kind, &entry.Counterparty, &entry.Label, &amount); err != nil {
			return model.Snapshot{}, storageError("failed to scan entry", err)
		}
		i, ok := index[accountID]
		if !ok {
			return model.Snapshot{}, corrupt("entry belongs to unknown account", nil)
		}
		if entry.Timestamp, err = time.Parse(time.RFC3339, timestamp); err != nil {
			return model.Snapshot{}, corrupt("entry has a malformed timestamp", err)
		}
		if entry.Amount, err = decimal.NewFromString(amount); err != nil {
			return model.Snapshot{}, corrupt("entry has a malformed amount", err)
		}
		entry.Kind = model.EntryKind(kind)
		snap.Accounts[i].History = append(snap.Accounts[i].History, entry)
	}
	if err := entries.Err(); err != nil {
		return model.Snapshot{}, storageError("failed to iterate entries", err)
	}
	return snap, nil
}

// SaveSnapshot replaces the stored ledger inside a single transaction.
func (d *SQLDatasource) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return storageError("failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return storageError("failed to clear entries", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return storageError("failed to clear accounts", err)
	}

	for position, a := range snap.Accounts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (id, position, name, account_number, initial_balance, balance, blocked)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, a.ID, position, a.Name, a.Number, a.InitialBalance.String(), a.Balance.String(), a.Blocked)
		if err != nil {
			return storageError("failed to insert account "+a.Number, err)
		}

		for i, e := range a.History {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO entries (account_id, position, transaction_id, timestamp, kind, counterparty, label, amount)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, a.ID, i, e.TransactionID, e.Timestamp.Format(time.RFC3339), string(e.Kind), e.Counterparty, e.Label, e.Amount.String())
			if err != nil {
				return storageError("failed to insert entry for account "+a.Number, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storageError("failed to commit ledger", err)
	}
	return nil
}

func storageError(message string, err error) error {
	return ledgererr.New(ledgererr.ErrStorage, message, errors.Wrap(err, "sqlite").Error())
}
