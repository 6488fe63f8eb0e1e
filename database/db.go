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
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"

	"github.com/ledgerbook/ledgerbook/config"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"

	sqliteDialect   = "sqlite3"
	migrationsTable = "ledgerbook_migrations"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewDataSource picks the datasource named by the configuration.
func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	switch configuration.Storage.Driver {
	case DriverSQLite:
		conn, err := ConnectDB(configuration.Storage.DSN)
		if err != nil {
			return nil, err
		}
		if _, err := Migrate(conn, migrate.Up); err != nil {
			conn.Close()
			return nil, err
		}
		return &SQLDatasource{Conn: conn, DSN: configuration.Storage.DSN}, nil
	case DriverJSON, "":
		retries := 0
		if configuration.Storage.SaveRetries != nil {
			retries = *configuration.Storage.SaveRetries
		}
		return NewFileDatasource(configuration.DataFile, retries), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", configuration.Storage.Driver)
	}
}

// ConnectDB opens the SQLite database at dsn and checks that it is reachable.
func ConnectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDialect, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}
	// SQLite allows a single writer; one connection keeps the ledger's writes serialized.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		logrus.WithField("dsn", dsn).WithError(err).Error("database connection error")
		db.Close()
		return nil, errors.Wrap(err, "ping sqlite database")
	}
	return db, nil
}

// Migrate applies (or rolls back) the embedded schema migrations and returns how many ran.
func Migrate(db *sql.DB, direction migrate.MigrationDirection) (int, error) {
	migrations := migrate.EmbedFileSystemMigrationSource{
		FileSystem: SQLFiles,
		Root:       "sql",
	}
	set := migrate.MigrationSet{TableName: migrationsTable}
	n, err := set.Exec(db, sqliteDialect, migrations, direction)
	if err != nil {
		return n, errors.Wrap(err, "run migrations")
	}
	return n, nil
}
