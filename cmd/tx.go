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

func transactionCommands(app *ledgerbookInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction"},
		Short:   "deposit, withdraw or transfer funds",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "deposit NUMBER AMOUNT",
		Aliases: []string{"depot"},
		Short:   "credit an account",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, app, session.TransactionRequest{Kind: session.KindDeposit, From: args[0], Amount: args[1]})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "withdraw NUMBER AMOUNT",
		Aliases: []string{"retrait"},
		Short:   "debit an account",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, app, session.TransactionRequest{Kind: session.KindWithdrawal, From: args[0], Amount: args[1]})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "transfer FROM TO AMOUNT",
		Aliases: []string{"transfert"},
		Short:   "move funds between two accounts",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, app, session.TransactionRequest{Kind: session.KindTransfer, From: args[0], To: args[1], Amount: args[2]})
		},
	})

	return cmd
}

func submit(cmd *cobra.Command, app *ledgerbookInstance, req session.TransactionRequest) error {
	return app.withController(cmd.Context(), func(controller *session.Controller) error {
		entries, err := controller.SubmitTransaction(req)
		if err != nil {
			return err
		}
		if err := commit(cmd.Context(), cmd, controller); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), session.RenderEntries(entries))
		return nil
	})
}
