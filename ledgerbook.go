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
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ledgerbook/ledgerbook/database"
	"github.com/ledgerbook/ledgerbook/model"
)

// Ledgerbook ties the in-memory Directory to the datasource it is loaded from and saved to.
type Ledgerbook struct {
	datasource database.IDataSource
	directory  *Directory
	admin      Administrator
	clock      func() time.Time
}

// NewLedgerbook creates a Ledgerbook with an empty Directory over the given datasource.
// Call Open to load what the datasource already holds.
//
// Parameters:
// - ds database.IDataSource: Where the ledger is read from and written to.
//
// Returns:
// - *Ledgerbook: A ledger with no accounts.
func NewLedgerbook(ds database.IDataSource) *Ledgerbook {
	directory := NewDirectory()
	return &Ledgerbook{
		datasource: ds,
		directory:  directory,
		admin:      NewAdministrator(directory),
	}
}

// SetClock replaces the clock used to stamp new entries, including after Open.
func (l *Ledgerbook) SetClock(now func() time.Time) {
	l.clock = now
	l.directory.SetClock(now)
}

// Open loads the persisted ledger, replacing the current Directory.
// A datasource with nothing stored yet yields an empty ledger.
//
// Parameters:
// - ctx context.Context: Bounds the read.
//
// Returns:
// - error: A STORAGE error if the datasource cannot be read, or CORRUPT_DATA if what it
// holds does not describe a consistent ledger. The current Directory is kept on failure.
func (l *Ledgerbook) Open(ctx context.Context) error {
	snap, err := l.datasource.LoadSnapshot(ctx)
	if err != nil {
		logrus.WithField("location", l.datasource.Describe()).WithError(err).Error("failed to load ledger")
		return err
	}
	directory, err := Restore(snap)
	if err != nil {
		logrus.WithField("location", l.datasource.Describe()).WithError(err).Error("ledger failed validation")
		return err
	}
	if l.clock != nil {
		directory.SetClock(l.clock)
	}

	l.directory = directory
	l.admin = NewAdministrator(directory)
	logrus.WithFields(logrus.Fields{
		"location": l.datasource.Describe(),
		"accounts": directory.Len(),
	}).Debug("ledger loaded")
	return nil
}

// Persist writes the whole ledger back to the datasource.
//
// Parameters:
// - ctx context.Context: Bounds the write, including any retries.
//
// Returns:
// - error: A STORAGE error if the ledger could not be written.
func (l *Ledgerbook) Persist(ctx context.Context) error {
	err := l.datasource.SaveSnapshot(ctx, l.directory.Snapshot())
	if err != nil {
		logrus.WithField("location", l.datasource.Describe()).WithError(err).Error("failed to save ledger")
		return err
	}
	logrus.WithFields(logrus.Fields{
		"location": l.datasource.Describe(),
		"accounts": l.directory.Len(),
	}).Debug("ledger saved")
	return nil
}

func (l *Ledgerbook) Directory() *Directory {
	return l.directory
}

func (l *Ledgerbook) Admin() Administrator {
	return l.admin
}

// Location describes where the ledger is persisted, e.g. the data file path.
func (l *Ledgerbook) Location() string {
	return l.datasource.Describe()
}

func (l *Ledgerbook) Close() error {
	return l.datasource.Close()
}

// FindAccount looks an account up by number.
func (l *Ledgerbook) FindAccount(number string) (*model.Account, error) {
	return l.directory.Find(number)
}
