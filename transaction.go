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

// Deposit credits amount to the account with the given number.
func (l *Ledgerbook) Deposit(number string, amount decimal.Decimal) (model.Entry, error) {
	account, err := l.directory.Find(number)
	if err != nil {
		return model.Entry{}, err
	}
	return account.Deposit(amount)
}

// Withdraw debits amount from the account with the given number.
func (l *Ledgerbook) Withdraw(number string, amount decimal.Decimal) (model.Entry, error) {
	account, err := l.directory.Find(number)
	if err != nil {
		return model.Entry{}, err
	}
	return account.Withdraw(amount)
}

// Transfer moves amount between two accounts. It returns the source and target legs,
// which share one transaction id.
func (l *Ledgerbook) Transfer(from, to string, amount decimal.Decimal) (model.Entry, model.Entry, error) {
	source, err := l.directory.Find(from)
	if err != nil {
		return model.Entry{}, model.Entry{}, err
	}
	target, err := l.directory.Find(to)
	if err != nil {
		return model.Entry{}, model.Entry{}, err
	}
	return source.Transfer(target, amount)
}
