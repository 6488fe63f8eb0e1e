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

	"github.com/ledgerbook/ledgerbook/model"
)

// IDataSource is where a ledger lives between runs. The whole ledger is read once at
// startup and written back in one piece at exit.
type IDataSource interface {
	LoadSnapshot(ctx context.Context) (model.Snapshot, error)    // Missing storage yields an empty snapshot
	SaveSnapshot(ctx context.Context, snap model.Snapshot) error // Replaces everything previously saved
	Describe() string                                            // Human readable location, e.g. the file path
	Close() error
}
