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

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

const (
	actionCreate      = "create"
	actionTransaction = "transaction"
	actionHistory     = "history"
	actionBlock       = "block"
	actionList        = "list"
	actionQuit        = "quit"
)

// Menu is the interactive loop. Every failed command is reported and the loop carries on;
// only "save & quit" or an abort at the main menu ends it.
type Menu struct {
	controller *Controller
	in         io.Reader
	out        io.Writer
	accessible bool
}

func NewMenu(controller *Controller, in io.Reader, out io.Writer, accessible bool) *Menu {
	return &Menu{controller: controller, in: in, out: out, accessible: accessible}
}

func (m *Menu) Run(ctx context.Context) (ExitResult, error) {
	for {
		action, err := m.chooseAction(ctx)
		if errors.Is(err, huh.ErrUserAborted) {
			result := m.controller.Abort()
			m.println(RenderExit(result))
			return result, nil
		}
		if err != nil {
			return ExitResult{}, err
		}

		if action == actionQuit {
			result, err := m.controller.Exit(ctx)
			if err != nil {
				m.println(RenderError(err))
				m.println(RenderExit(result))
				m.println("choose save & quit to try again, or press ctrl+c to leave without saving")
				continue
			}
			m.println(RenderExit(result))
			return result, nil
		}

		err = m.dispatch(ctx, action)
		switch {
		case errors.Is(err, huh.ErrUserAborted):
			// Leaving a form goes back to the menu.
		case err != nil:
			m.println(RenderError(err))
		}
	}
}

func (m *Menu) chooseAction(ctx context.Context) (string, error) {
	var action string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("What would you like to do?").
			Options(
				huh.NewOption("Create an account", actionCreate),
				huh.NewOption("Deposit, withdraw or transfer", actionTransaction),
				huh.NewOption("View an account's history", actionHistory),
				huh.NewOption("Block an account", actionBlock),
				huh.NewOption("List accounts", actionList),
				huh.NewOption("Save & quit", actionQuit),
			).
			Value(&action),
	))
	return action, m.run(ctx, form)
}

func (m *Menu) dispatch(ctx context.Context, action string) error {
	switch action {
	case actionCreate:
		return m.createAccount(ctx)
	case actionTransaction:
		return m.transaction(ctx)
	case actionHistory:
		return m.history(ctx)
	case actionBlock:
		return m.block(ctx)
	case actionList:
		m.println(RenderAccounts(m.controller.Accounts()))
		return nil
	}
	return fmt.Errorf("unknown action %q", action)
}

func (m *Menu) createAccount(ctx context.Context) error {
	var req CreateAccountRequest
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Holder name").Value(&req.Name),
		huh.NewInput().Title("Account number").Value(&req.Number),
		huh.NewInput().Title("Initial balance").Placeholder("0").Value(&req.InitialBalance),
	))
	if err := m.run(ctx, form); err != nil {
		return err
	}

	account, err := m.controller.CreateAccount(req)
	if err != nil {
		return err
	}
	m.println(RenderSuccess(fmt.Sprintf("account %s created with balance %s", account, formatAmount(account.Balance()))))
	return nil
}

func (m *Menu) transaction(ctx context.Context) error {
	var req TransactionRequest
	kindForm := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Transaction").
			Options(
				huh.NewOption("Deposit", KindDeposit),
				huh.NewOption("Withdrawal", KindWithdrawal),
				huh.NewOption("Transfer", KindTransfer),
			).
			Value(&req.Kind),
	))
	if err := m.run(ctx, kindForm); err != nil {
		return err
	}

	fields := []huh.Field{
		huh.NewInput().Title("Account number").Value(&req.From),
	}
	if req.Kind == KindTransfer {
		fields = append(fields, huh.NewInput().Title("Destination account number").Value(&req.To))
	}
	fields = append(fields, huh.NewInput().Title("Amount").Value(&req.Amount))
	if err := m.run(ctx, huh.NewForm(huh.NewGroup(fields...))); err != nil {
		return err
	}

	entries, err := m.controller.SubmitTransaction(req)
	if err != nil {
		return err
	}
	m.println(RenderEntries(entries))
	return nil
}

func (m *Menu) history(ctx context.Context) error {
	number, err := m.askNumber(ctx, "Account number")
	if err != nil {
		return err
	}
	account, err := m.controller.Find(number)
	if err != nil {
		return err
	}
	entries, err := m.controller.History(number)
	if err != nil {
		return err
	}
	m.println(RenderHistory(account, entries))
	return nil
}

func (m *Menu) block(ctx context.Context) error {
	number, err := m.askNumber(ctx, "Account number to block")
	if err != nil {
		return err
	}

	confirmed := false
	confirm := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Block %s? It will reject every further transaction.", number)).
			Affirmative("Block").
			Negative("Cancel").
			Value(&confirmed),
	))
	if err := m.run(ctx, confirm); err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	account, err := m.controller.Block(number)
	if err != nil {
		return err
	}
	m.println(RenderSuccess(fmt.Sprintf("account %s is blocked", account)))
	return nil
}

func (m *Menu) askNumber(ctx context.Context, title string) (string, error) {
	var number string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title(title).Value(&number),
	))
	if err := m.run(ctx, form); err != nil {
		return "", err
	}
	return strings.TrimSpace(number), nil
}

func (m *Menu) run(ctx context.Context, form *huh.Form) error {
	return form.
		WithAccessible(m.accessible).
		WithInput(m.in).
		WithOutput(m.out).
		RunWithContext(ctx)
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}
