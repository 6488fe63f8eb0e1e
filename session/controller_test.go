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

package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook"
	"github.com/ledgerbook/ledgerbook/database"
	"github.com/ledgerbook/ledgerbook/internal/ledgererr"
	"github.com/ledgerbook/ledgerbook/internal/metrics"
	"github.com/ledgerbook/ledgerbook/model"
)

func newTestController(t *testing.T, path string) (*Controller, *metrics.Collector) {
	t.Helper()
	book := ledgerbook.NewLedgerbook(database.NewFileDatasource(path, 0))
	require.NoError(t, book.Open(context.Background()))
	collector := metrics.NewCollector()
	return NewController(book, collector, ""), collector
}

// operationCount reads ledgerbook_operations_total for one operation and outcome.
func operationCount(t *testing.T, collector *metrics.Collector, operation, outcome string) float64 {
	t.Helper()
	families, err := collector.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "ledgerbook_operations_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["operation"] == operation && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestController_CreateAccount(t *testing.T) {
	c, collector := newTestController(t, filepath.Join(t.TempDir(), "ledger.json"))

	account, err := c.CreateAccount(CreateAccountRequest{Name: "Alice", Number: "A1", InitialBalance: "100.50"})
	require.NoError(t, err)
	assert.Equal(t, "100.5", account.Balance().String())

	// An empty initial balance opens the account at zero.
	bob, err := c.CreateAccount(CreateAccountRequest{Name: "Bob", Number: "B1"})
	require.NoError(t, err)
	assert.True(t, bob.Balance().IsZero())

	assert.Len(t, c.Accounts(), 2)
	assert.Equal(t, 2.0, operationCount(t, collector, "create_account", "ok"))
}

func TestController_CreateAccountRejects(t *testing.T) {
	tests := []struct {
		name string
		req  CreateAccountRequest
		code ledgererr.ErrorCode
	}{
		{name: "missing name", req: CreateAccountRequest{Number: "A1"}, code: ledgererr.ErrInvalidInput},
		{name: "missing number", req: CreateAccountRequest{Name: "Alice"}, code: ledgererr.ErrInvalidInput},
		{name: "balance not a number", req: CreateAccountRequest{Name: "Alice", Number: "A1", InitialBalance: "ten"}, code: ledgererr.ErrInvalidInput},
		{name: "negative balance", req: CreateAccountRequest{Name: "Alice", Number: "A1", InitialBalance: "-1"}, code: ledgererr.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, collector := newTestController(t, filepath.Join(t.TempDir(), "ledger.json"))
			_, err := c.CreateAccount(tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, ledgererr.CodeOf(err))
			assert.Empty(t, c.Accounts())
			assert.Equal(t, 1.0, operationCount(t, collector, "create_account", metrics.Outcome(err)))
		})
	}
}

func TestController_ValidationDetailsNameFields(t *testing.T) {
	c, _ := newTestController(t, filepath.Join(t.TempDir(), "ledger.json"))

	_, err := c.SubmitTransaction(TransactionRequest{Kind: "transfer", From: "A1", Amount: "abc"})
	require.Error(t, err)
	details, ok := ledgererr.DetailsOf(err).(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "to")
	assert.Contains(t, details, "amount")
}

func TestController_SubmitTransaction(t *testing.T) {
	c, collector := newTestController(t, filepath.Join(t.TempDir(), "ledger.json"))
	_, err := c.CreateAccount(CreateAccountRequest{Name: "Alice", Number: "A1", InitialBalance: "100"})
	require.NoError(t, err)
	_, err = c.CreateAccount(CreateAccountRequest{Name: "Bob", Number: "B1"})
	require.NoError(t, err)

	entries, err := c.SubmitTransaction(TransactionRequest{Kind: "depot", From: "A1", Amount: "50"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.Deposit, entries[0].Kind)

	entries, err = c.SubmitTransaction(TransactionRequest{Kind: "Retrait", From: "A1", Amount: "20"})
	require.NoError(t, err)
	assert.Equal(t, model.Withdrawal, entries[0].Kind)

	entries, err = c.SubmitTransaction(TransactionRequest{Kind: "transfer", From: "A1", To: "B1", Amount: "30"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.TransferOut, entries[0].Kind)
	assert.Equal(t, model.TransferIn, entries[1].Kind)
	assert.Equal(t, entries[0].TransactionID, entries[1].TransactionID)

	alice, err := c.Find("A1")
	require.NoError(t, err)
	assert.Equal(t, "100", alice.Balance().String())

	_, err = c.SubmitTransaction(TransactionRequest{Kind: "withdraw", From: "A1", Amount: "1000"})
	assert.True(t, ledgererr.Is(err, ledgererr.ErrInvalidAmount))

	_, err = c.SubmitTransaction(TransactionRequest{Kind: "gift", From: "A1", Amount: "1"})
	assert.True(t, ledgererr.Is(err, ledgererr.ErrInvalidInput))

	assert.Equal(t, 1.0, operationCount(t, collector, "deposit", "ok"))
	assert.Equal(t, 1.0, operationCount(t, collector, "withdrawal", "ok"))
	assert.Equal(t, 1.0, operationCount(t, collector, "withdrawal", "invalid_amount"))
	assert.Equal(t, 1.0, operationCount(t, collector, "unknown", "invalid_input"))
}

func TestController_BlockAndHistory(t *testing.T) {
	c, _ := newTestController(t, filepath.Join(t.TempDir(), "ledger.json"))
	_, err := c.CreateAccount(CreateAccountRequest{Name: "Alice", Number: "A1", InitialBalance: "10"})
	require.NoError(t, err)
	_, err = c.SubmitTransaction(TransactionRequest{Kind: "deposit", From: "A1", Amount: "5"})
	require.NoError(t, err)

	account, err := c.Block("A1")
	require.NoError(t, err)
	assert.True(t, account.IsBlocked())

	_, err = c.SubmitTransaction(TransactionRequest{Kind: "deposit", From: "A1", Amount: "5"})
	assert.True(t, ledgererr.Is(err, ledgererr.ErrAccountBlocked))

	history, err := c.History("A1")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = c.History("A2")
	assert.True(t, ledgererr.Is(err, ledgererr.ErrNotFound))
	_, err = c.Block("A2")
	assert.True(t, ledgererr.Is(err, ledgererr.ErrNotFound))
}

func TestController_ExitSavesLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	c, _ := newTestController(t, path)

	faker := gofakeit.New(11)
	for i := 0; i < 3; i++ {
		_, err := c.CreateAccount(CreateAccountRequest{
			Name:           faker.Name(),
			Number:         fmt.Sprintf("ACC-%d%s", i, faker.Numerify("###")),
			InitialBalance: fmt.Sprintf("%d", faker.Number(0, 1000)),
		})
		require.NoError(t, err)
	}

	result, err := c.Exit(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Saved)
	assert.Equal(t, path, result.Location)

	reopened, _ := newTestController(t, path)
	assert.Len(t, reopened.Accounts(), 3)
}

func TestController_ExitReportsUnsavedLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "ledger.json")
	c, collector := newTestController(t, path)
	_, err := c.CreateAccount(CreateAccountRequest{Name: "Alice", Number: "A1"})
	require.NoError(t, err)

	result, err := c.Exit(context.Background())
	require.Error(t, err)
	assert.True(t, ledgererr.Is(err, ledgererr.ErrStorage))
	assert.False(t, result.Saved)
	assert.Equal(t, path, result.Location)
	assert.Equal(t, 1.0, operationCount(t, collector, "save", "storage"))
}

func TestController_AbortWritesMetrics(t *testing.T) {
	dir := t.TempDir()
	book := ledgerbook.NewLedgerbook(database.NewFileDatasource(filepath.Join(dir, "ledger.json"), 0))
	textfile := filepath.Join(dir, "ledgerbook.prom")
	c := NewController(book, nil, textfile)

	result := c.Abort()
	assert.True(t, result.Aborted)
	assert.False(t, result.Saved)

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `operation="abort"`)

	_, err = os.Stat(filepath.Join(dir, "ledger.json"))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, c.ID(), "ses_")
}
