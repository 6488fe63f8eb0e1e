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
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledgerbook/session"
)

func sessionCommands(app *ledgerbookInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "start the interactive menu (the default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, app)
		},
	}
}

func runSession(cmd *cobra.Command, app *ledgerbookInstance) error {
	return app.withController(cmd.Context(), func(controller *session.Controller) error {
		menu := session.NewMenu(controller, os.Stdin, cmd.OutOrStdout(), app.cnf.Session.Accessible)
		_, err := menu.Run(cmd.Context())
		return err
	})
}
