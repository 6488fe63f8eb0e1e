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
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/ledgererr"
)

const (
	KindDeposit    = "deposit"
	KindWithdrawal = "withdrawal"
	KindTransfer   = "transfer"
)

// kindAliases maps what a user may type to a transaction kind. The French names are
// what the first version of the program called them.
var kindAliases = map[string]string{
	"deposit":    KindDeposit,
	"depot":      KindDeposit,
	"dépôt":      KindDeposit,
	"withdrawal": KindWithdrawal,
	"withdraw":   KindWithdrawal,
	"retrait":    KindWithdrawal,
	"transfer":   KindTransfer,
	"transfert":  KindTransfer,
}

// NormalizeKind resolves an alias to its transaction kind, or returns "" if unknown.
func NormalizeKind(kind string) string {
	return kindAliases[strings.ToLower(strings.TrimSpace(kind))]
}

var isDecimal = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
		return errors.New("must be a number")
	}
	return nil
})

var isKnownKind = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s != "" && NormalizeKind(s) == "" {
		return errors.New("must be deposit, withdrawal or transfer")
	}
	return nil
})

type CreateAccountRequest struct {
	Name           string `json:"name"`
	Number         string `json:"account_number"`
	InitialBalance string `json:"initial_balance"`
}

func (r CreateAccountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Number, validation.Required, validation.Length(1, 34)),
		validation.Field(&r.InitialBalance, isDecimal),
	)
}

// TransactionRequest asks for a deposit, withdrawal or transfer. From is the account
// acted on; To is only read for transfers.
type TransactionRequest struct {
	Kind   string `json:"kind"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (r TransactionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required, isKnownKind),
		validation.Field(&r.From, validation.Required),
		validation.Field(&r.To, validation.When(NormalizeKind(r.Kind) == KindTransfer, validation.Required)),
		validation.Field(&r.Amount, validation.Required, isDecimal),
	)
}

// parseAmount reads a validated amount. An empty string is zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ledgererr.Newf(ledgererr.ErrInvalidInput, "%q is not a number", s)
	}
	return amount, nil
}

// invalidInput turns a validation failure into a ledger error.
func invalidInput(err error) error {
	var fields validation.Errors
	if errors.As(err, &fields) {
		details := make(map[string]string, len(fields))
		for field, fieldErr := range fields {
			details[field] = fieldErr.Error()
		}
		return ledgererr.New(ledgererr.ErrInvalidInput, err.Error(), details)
	}
	return ledgererr.New(ledgererr.ErrInvalidInput, err.Error(), nil)
}
