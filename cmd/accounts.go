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

	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledgerbook/session"
)

func accountCommands(app *ledgerbookInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "create, block and inspect accounts",
	}

	cmd.AddCommand(accountCreateCommand(app))
	cmd.AddCommand(accountBlockCommand(app))
	cmd.AddCommand(accountHistoryCommand(app))
	cmd.AddCommand(accountListCommand(app))

	return cmd
}

func accountCreateCommand(app *ledgerbookInstance) *cobra.Command {
	var req session.CreateAccountRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "open a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd.Context(), func(controller *session.Controller) error {
				account, err := controller.CreateAccount(req)
				if err != nil {
					return err
				}
				if err := commit(cmd.Context(), cmd, controller); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), session.RenderSuccess(fmt.Sprintf("account %s created", account)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "account holder name")
	cmd.Flags().StringVar(&req.Number, "number", "", "account number, unique across the ledger")
	cmd.Flags().StringVar(&req.InitialBalance, "balance", "0", "initial balance")

	return cmd
}

func accountBlockCommand(app *ledgerbookInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "block NUMBER",
		Short: "block an account so it rejects every further transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd.Context(), func(controller *session.Controller) error {
				account, err := controller.Block(args[0])
				if err != nil {
					return err
				}
				if err := commit(cmd.Context(), cmd, controller); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), session.RenderSuccess(fmt.Sprintf("account %s is blocked", account)))
				return nil
			})
		},
	}
}

func accountHistoryCommand(app *ledgerbookInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "history NUMBER",
		Short: "show an account's transactions, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd.Context(), func(controller *session.Controller) error {
				account, err := controller.Find(args[0])
				if err != nil {
					return err
				}
				entries, err := controller.History(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), session.RenderHistory(account, entries))
				return nil
			})
		},
	}
}

func accountListCommand(app *ledgerbookInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd.Context(), func(controller *session.Controller) error {
				fmt.Fprintln(cmd.OutOrStdout(), session.RenderAccounts(controller.Accounts()))
				return nil
			})
		},
	}
}
