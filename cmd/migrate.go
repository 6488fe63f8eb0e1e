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

package main

import (
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledgerbook/database"
)

// migrateCommands manages the schema of the sqlite datasource.
func migrateCommands(app *ledgerbookInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply or roll back the sqlite schema",
	}

	cmd.AddCommand(migrateDirectionCommand(app, "up", migrate.Up))
	cmd.AddCommand(migrateDirectionCommand(app, "down", migrate.Down))

	return cmd
}

func migrateDirectionCommand(app *ledgerbookInstance, use string, direction migrate.MigrationDirection) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: "run migrations " + use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cnf.Storage.Driver != database.DriverSQLite {
				return fmt.Errorf("migrations only apply to the sqlite driver, storage.driver is %q", app.cnf.Storage.Driver)
			}

			db, err := database.ConnectDB(app.cnf.Storage.DSN)
			if err != nil {
				return fmt.Errorf("error connecting to database: %w", err)
			}
			defer db.Close()

			n, err := database.Migrate(db, direction)
			if err != nil {
				return err
			}
			if direction == migrate.Up {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migrations!\n", n)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migrations!\n", n)
			}
			return nil
		},
	}
}
