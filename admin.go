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
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/model"
)

// Administrator is the set of privileged operations. It carries no state of its own.
type Administrator struct {
	directory *Directory
}

// NewAdministrator returns the administrator capability over d.
func NewAdministrator(d *Directory) Administrator {
	return Administrator{directory: d}
}

// CreateAccount opens a new account.
func (a Administrator) CreateAccount(name, number string, initialBalance decimal.Decimal) (*model.Account, error) {
	return a.directory.CreateAccount(name, number, initialBalance)
}

// BlockAccount blocks the account with the given number.
func (a Administrator) BlockAccount(number string) (*model.Account, error) {
	account, err := a.directory.Find(number)
	if err != nil {
		return nil, err
	}
	account.Block()
	return account, nil
}

// ViewHistory returns a copy of the account's history, oldest first.
func (a Administrator) ViewHistory(number string) ([]model.Entry, error) {
	account, err := a.directory.Find(number)
	if err != nil {
		return nil, err
	}
	return account.History(), nil
}
