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
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ledgerbook/ledgerbook/internal/ledgererr"
	"github.com/ledgerbook/ledgerbook/model"
)

// FileDatasource keeps the ledger in a single JSON document.
type FileDatasource struct {
	Path    string
	Retries int

	// initialInterval is the first wait between save attempts.
	initialInterval time.Duration
}

// NewFileDatasource returns a datasource for path. retries is the number of extra
// save attempts made after a transient write failure.
func NewFileDatasource(path string, retries int) *FileDatasource {
	if retries < 0 {
		retries = 0
	}
	return &FileDatasource{Path: path, Retries: retries, initialInterval: 100 * time.Millisecond}
}

func (f *FileDatasource) Describe() string {
	return f.Path
}

func (f *FileDatasource) Close() error {
	return nil
}

// LoadSnapshot reads and decodes the file. A missing file is an empty ledger.
func (f *FileDatasource) LoadSnapshot(_ context.Context) (model.Snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logrus.WithField("path", f.Path).Info("no ledger file yet, starting empty")
			return model.Snapshot{}, nil
		}
		return model.Snapshot{}, ledgererr.New(ledgererr.ErrStorage, "failed to read ledger file", errors.Wrapf(err, "read %s", f.Path).Error())
	}
	return DecodeSnapshot(data)
}

// SaveSnapshot writes the ledger to a temporary file next to the target and renames it
// into place, so an interrupted save never leaves a truncated ledger behind.
// Transient failures are retried with exponential backoff; permission errors are not.
func (f *FileDatasource) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := writeAtomic(f.Path, data)
		if err == nil {
			return nil
		}
		if errors.Is(err, fs.ErrPermission) {
			return backoff.Permanent(err)
		}
		logrus.WithFields(logrus.Fields{"path": f.Path, "attempt": attempt}).WithError(err).Warn("saving ledger failed, retrying")
		return err
	}

	if err := backoff.Retry(operation, f.backOff(ctx)); err != nil {
		return ledgererr.New(ledgererr.ErrStorage, "failed to save ledger to "+f.Path, err.Error())
	}
	return nil
}

func (f *FileDatasource) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if f.initialInterval > 0 {
		exp.InitialInterval = f.initialInterval
	}
	exp.MaxElapsedTime = 10 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(f.Retries)), ctx)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.Wrapf(err, "create %s", tmp)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return errors.Wrapf(err, "write %s", tmp)
	}
	if err := file.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "rename %s to %s", tmp, filepath.Base(path))
	}
	return nil
}
