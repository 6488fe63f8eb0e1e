package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	Deposit     EntryKind = "deposit"
	Withdrawal  EntryKind = "withdrawal"
	TransferOut EntryKind = "transfer_out"
	TransferIn  EntryKind = "transfer_in"
)

// Valid reports whether k is one of the four known kinds.
func (k EntryKind) Valid() bool {
	switch k {
	case Deposit, Withdrawal, TransferOut, TransferIn:
		return true
	}
	return false
}

// Sign is +1 for money coming in and -1 for money going out.
func (k EntryKind) Sign() int {
	switch k {
	case Deposit, TransferIn:
		return 1
	case Withdrawal, TransferOut:
		return -1
	}
	return 0
}

// IsTransfer reports whether k is one leg of a transfer.
func (k EntryKind) IsTransfer() bool {
	return k == TransferOut || k == TransferIn
}

// Entry is one recorded movement of funds against an account. Entries are values
// and are never changed once appended to a history.
type Entry struct {
	TransactionID int64
	Timestamp     time.Time
	Kind          EntryKind
	Counterparty  string // account number of the other leg; transfers only
	Label         string
	Amount        decimal.Decimal // always positive
}

// Signed returns the amount with the sign of the entry kind applied.
func (e Entry) Signed() decimal.Decimal {
	if e.Kind.Sign() < 0 {
		return e.Amount.Neg()
	}
	return e.Amount
}
