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
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/ledgererr"
	"github.com/ledgerbook/ledgerbook/model"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	amountStyle  = cellStyle.Align(lipgloss.Right)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// styleColumns right-aligns the given amount columns and pads everything else.
func styleColumns(amountColumns ...int) table.StyleFunc {
	return func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		for _, c := range amountColumns {
			if c == col {
				return amountStyle
			}
		}
		return cellStyle
	}
}

// RenderHistory draws the account's entries as a table, oldest first.
func RenderHistory(account *model.Account, entries []model.Entry) string {
	title := fmt.Sprintf("History of %s", account)
	if len(entries) == 0 {
		return title + "\n" + mutedStyle.Render("no transactions yet")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TX", "WHEN", "KIND", "AMOUNT", "DETAILS").
		StyleFunc(styleColumns(3))
	for _, e := range entries {
		t.Row(
			fmt.Sprintf("%d", e.TransactionID),
			formatTime(e.Timestamp),
			string(e.Kind),
			signedAmount(e),
			e.Label,
		)
	}
	return title + "\n" + t.String()
}

// RenderAccounts lists every account with its balance and state.
func RenderAccounts(accounts []*model.Account) string {
	if len(accounts) == 0 {
		return mutedStyle.Render("no accounts yet")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NUMBER", "NAME", "BALANCE", "STATE").
		StyleFunc(styleColumns(3))
	for _, a := range accounts {
		state := "active"
		if a.IsBlocked() {
			state = "blocked"
		}
		t.Row(fmt.Sprintf("%d", a.ID()), a.Number(), a.Name(), formatAmount(a.Balance()), state)
	}
	return t.String()
}

// RenderEntries confirms what a transaction recorded.
func RenderEntries(entries []model.Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("#%d %s %s %s", e.TransactionID, e.Kind, signedAmount(e), e.Label))
	}
	return successStyle.Render(strings.Join(lines, "\n"))
}

func RenderError(err error) string {
	if code := ledgererr.CodeOf(err); code != "" {
		return errorStyle.Render(fmt.Sprintf("✗ %s", err))
	}
	return errorStyle.Render(fmt.Sprintf("✗ error: %s", err))
}

func RenderSuccess(message string) string {
	return successStyle.Render("✓ " + message)
}

// RenderExit tells the user whether their changes were kept.
func RenderExit(result ExitResult) string {
	switch {
	case result.Saved:
		return RenderSuccess(fmt.Sprintf("ledger saved to %s", result.Location))
	case result.Aborted:
		return errorStyle.Render(fmt.Sprintf("session aborted, changes were NOT saved to %s", result.Location))
	default:
		return errorStyle.Render(fmt.Sprintf("ledger was NOT saved to %s", result.Location))
	}
}

func signedAmount(e model.Entry) string {
	if e.Kind.Sign() < 0 {
		return "-" + formatAmount(e.Amount)
	}
	return "+" + formatAmount(e.Amount)
}

// formatAmount shows at least two decimals and never rounds away precision.
func formatAmount(d decimal.Decimal) string {
	if d.Exponent() >= -2 {
		return d.StringFixed(2)
	}
	return d.String()
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}
