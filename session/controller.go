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

// Package session is the interactive front end of the ledger: it validates what the user
// typed, calls into the ledger and reports the outcome. It holds no ledger state itself.
package session

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ledgerbook/ledgerbook"
	"github.com/ledgerbook/ledgerbook/internal/metrics"
	"github.com/ledgerbook/ledgerbook/model"
)

// ExitResult tells the caller whether the ledger reached storage when the session ended.
type ExitResult struct {
	Saved    bool
	Aborted  bool
	Location string
}

type Controller struct {
	book     *ledgerbook.Ledgerbook
	metrics  *metrics.Collector
	textfile string
	id       string
	logger   *logrus.Entry
}

// NewController starts a session over book. When textfile is not empty the session
// metrics are written there on exit.
func NewController(book *ledgerbook.Ledgerbook, collector *metrics.Collector, textfile string) *Controller {
	if collector == nil {
		collector = metrics.NewCollector()
	}
	id := model.GenerateUUIDWithSuffix("ses")
	collector.SetAccounts(book.Directory().Len())
	return &Controller{
		book:     book,
		metrics:  collector,
		textfile: textfile,
		id:       id,
		logger:   logrus.WithField("session_id", id),
	}
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) CreateAccount(req CreateAccountRequest) (*model.Account, error) {
	account, err := c.createAccount(req)
	c.record("create_account", req.Number, err)
	if err == nil {
		c.metrics.SetAccounts(c.book.Directory().Len())
	}
	return account, err
}

func (c *Controller) createAccount(req CreateAccountRequest) (*model.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidInput(err)
	}
	initial, err := parseAmount(req.InitialBalance)
	if err != nil {
		return nil, err
	}
	return c.book.Admin().CreateAccount(req.Name, req.Number, initial)
}

// SubmitTransaction applies a deposit, withdrawal or transfer and returns the entries it
// recorded: one, or the source and target legs of a transfer.
func (c *Controller) SubmitTransaction(req TransactionRequest) ([]model.Entry, error) {
	kind := NormalizeKind(req.Kind)
	operation := kind
	if operation == "" {
		operation = "unknown"
	}
	entries, err := c.submitTransaction(kind, req)
	c.record(operation, req.From, err)
	return entries, err
}

func (c *Controller) submitTransaction(kind string, req TransactionRequest) ([]model.Entry, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidInput(err)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindDeposit:
		entry, err := c.book.Deposit(req.From, amount)
		if err != nil {
			return nil, err
		}
		return []model.Entry{entry}, nil
	case KindWithdrawal:
		entry, err := c.book.Withdraw(req.From, amount)
		if err != nil {
			return nil, err
		}
		return []model.Entry{entry}, nil
	default:
		out, in, err := c.book.Transfer(req.From, req.To, amount)
		if err != nil {
			return nil, err
		}
		return []model.Entry{out, in}, nil
	}
}

// History returns the account's entries, oldest first.
func (c *Controller) History(number string) ([]model.Entry, error) {
	entries, err := c.book.Admin().ViewHistory(number)
	c.record("history", number, err)
	return entries, err
}

func (c *Controller) Block(number string) (*model.Account, error) {
	account, err := c.book.Admin().BlockAccount(number)
	c.record("block", number, err)
	return account, err
}

func (c *Controller) Accounts() []*model.Account {
	return c.book.Directory().Accounts()
}

// Exit persists the ledger. A failed save is returned with Saved set to false so the
// caller can tell the user their changes were not kept.
func (c *Controller) Exit(ctx context.Context) (ExitResult, error) {
	result := ExitResult{Location: c.book.Location()}

	start := time.Now()
	err := c.book.Persist(ctx)
	c.metrics.ObserveSave(time.Since(start))
	c.record("save", "", err)
	c.writeMetrics()
	if err != nil {
		return result, err
	}

	result.Saved = true
	c.logger.WithField("location", result.Location).Info("session ended, ledger saved")
	return result, nil
}

// Abort ends the session without saving.
func (c *Controller) Abort() ExitResult {
	c.record("abort", "", nil)
	c.writeMetrics()
	c.logger.Warn("session aborted, changes were not saved")
	return ExitResult{Aborted: true, Location: c.book.Location()}
}

func (c *Controller) record(operation, number string, err error) {
	c.metrics.RecordOperation(operation, err)

	entry := c.logger.WithField("operation", operation)
	if number != "" {
		entry = entry.WithField("account_number", number)
	}
	if err != nil {
		entry.WithError(err).Warn("operation rejected")
		return
	}
	entry.Debug("operation applied")
}

func (c *Controller) writeMetrics() {
	if c.textfile == "" {
		return
	}
	if err := c.metrics.WriteTextfile(c.textfile); err != nil {
		c.logger.WithField("path", c.textfile).WithError(err).Error("failed to write metrics textfile")
	}
}

// Find looks an account up without counting it as an operation.
func (c *Controller) Find(number string) (*model.Account, error) {
	return c.book.FindAccount(number)
}
