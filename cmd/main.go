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
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledgerbook"
	"github.com/ledgerbook/ledgerbook/config"
	"github.com/ledgerbook/ledgerbook/database"
	"github.com/ledgerbook/ledgerbook/internal/ledgererr"
	"github.com/ledgerbook/ledgerbook/internal/metrics"
	"github.com/ledgerbook/ledgerbook/session"
)

// CLI wraps the root cobra command.
type CLI struct {
	cmd *cobra.Command
}

// ledgerbookInstance is shared by every command: the loaded configuration and the flags
// that override it.
type ledgerbookInstance struct {
	cnf        *config.Configuration
	configFile string
	dataFile   string
}

// recoverPanic handles any panics during program execution and logs the error using Logrus.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(ledgererr.ExitUnknown)
	}
}

// preRun loads .env, then the configuration, and sets up logging before any command runs.
func preRun(app *ledgerbookInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading .env: %w", err)
		}

		if err := config.InitConfig(app.configFile); err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		cnf, err := config.Fetch()
		if err != nil {
			return err
		}
		if app.dataFile != "" {
			cnf.DataFile = app.dataFile
		}
		if err := cnf.SetupLogging(); err != nil {
			return err
		}

		app.cnf = cnf
		return nil
	}
}

// openLedger connects to the configured datasource and loads the ledger.
func (app *ledgerbookInstance) openLedger(ctx context.Context) (*ledgerbook.Ledgerbook, error) {
	ds, err := database.NewDataSource(app.cnf)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %w", err)
	}
	book := ledgerbook.NewLedgerbook(ds)
	if err := book.Open(ctx); err != nil {
		ds.Close()
		return nil, err
	}
	return book, nil
}

// withController opens the ledger, hands a session controller to fn and closes the
// datasource afterwards.
func (app *ledgerbookInstance) withController(ctx context.Context, fn func(*session.Controller) error) error {
	book, err := app.openLedger(ctx)
	if err != nil {
		return err
	}
	defer book.Close()

	controller := session.NewController(book, metrics.NewCollector(), app.cnf.Metrics.Textfile)
	return fn(controller)
}

// commit saves the ledger at the end of a one-shot command.
func commit(ctx context.Context, cmd *cobra.Command, controller *session.Controller) error {
	result, err := controller.Exit(ctx)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), session.RenderExit(result))
		return err
	}
	return nil
}

// NewCLI creates the root command and registers every subcommand.
func NewCLI() *CLI {
	app := &ledgerbookInstance{}

	rootCmd := &cobra.Command{
		Use:           "ledgerbook",
		Short:         "Interactive command-line ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, app)
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.configFile, "config", "./"+config.DEFAULT_CONFIG_FILE, "configuration file")
	rootCmd.PersistentFlags().StringVar(&app.dataFile, "data", "", "ledger data file, overrides data_file from the configuration")
	rootCmd.PersistentPreRunE = preRun(app)

	rootCmd.AddCommand(sessionCommands(app))
	rootCmd.AddCommand(accountCommands(app))
	rootCmd.AddCommand(transactionCommands(app))
	rootCmd.AddCommand(configCommands(app))
	rootCmd.AddCommand(migrateCommands(app))

	return &CLI{cmd: rootCmd}
}

// executeCLI runs the root command. Ledger errors exit with a status specific to their kind.
func (c CLI) executeCLI() {
	if err := c.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, session.RenderError(err))
		os.Exit(ledgererr.ExitCode(err))
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
