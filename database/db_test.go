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
	"testing"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wacul/ptr"

	"github.com/ledgerbook/ledgerbook/config"
)

func TestNewDataSource_JSON(t *testing.T) {
	cnf := &config.Configuration{DataFile: "ledger.json"}
	cnf.Storage.Driver = DriverJSON
	cnf.Storage.SaveRetries = ptr.Int(3)

	ds, err := NewDataSource(cnf)
	require.NoError(t, err)

	file, ok := ds.(*FileDatasource)
	require.True(t, ok)
	assert.Equal(t, "ledger.json", file.Path)
	assert.Equal(t, 3, file.Retries)
}

func TestNewDataSource_DefaultsToJSON(t *testing.T) {
	ds, err := NewDataSource(&config.Configuration{DataFile: "ledger.json"})
	require.NoError(t, err)
	assert.IsType(t, &FileDatasource{}, ds)
}

func TestNewDataSource_UnknownDriver(t *testing.T) {
	cnf := &config.Configuration{}
	cnf.Storage.Driver = "postgres"

	_, err := NewDataSource(cnf)
	assert.Error(t, err)
}

func TestMigrations_AreEmbedded(t *testing.T) {
	source := migrate.EmbedFileSystemMigrationSource{FileSystem: SQLFiles, Root: "sql"}
	migrations, err := source.FindMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, "0001_ledger.sql", migrations[0].Id)
	assert.NotEmpty(t, migrations[0].Up)
	assert.NotEmpty(t, migrations[0].Down)
}

func TestSQLiteRoundTrip(t *testing.T) {
	db, err := ConnectDB("file::memory:?cache=shared")
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer db.Close()

	n, err := Migrate(db, migrate.Up)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ds := &SQLDatasource{Conn: db, DSN: ":memory:"}
	require.NoError(t, ds.SaveSnapshot(context.Background(), sampleSnapshot()))
	// Saving twice replaces rather than appends.
	require.NoError(t, ds.SaveSnapshot(context.Background(), sampleSnapshot()))

	snap, err := ds.LoadSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Accounts, 2)
	assert.Equal(t, "Bob", snap.Accounts[1].Name)
	assert.Len(t, snap.Accounts[0].History, 1)
}
