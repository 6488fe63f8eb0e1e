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

// Package ledgererr holds the typed failures returned by ledger operations.
// Every failure is local and non-retryable; callers report it and carry on.
package ledgererr

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrInvalidAmount          ErrorCode = "INVALID_AMOUNT"
	ErrAccountBlocked         ErrorCode = "ACCOUNT_BLOCKED"
	ErrDuplicateAccountNumber ErrorCode = "DUPLICATE_ACCOUNT_NUMBER"
	ErrNotFound               ErrorCode = "NOT_FOUND"
	ErrCorruptData            ErrorCode = "CORRUPT_DATA"
	ErrInvalidInput           ErrorCode = "INVALID_INPUT"
	ErrStorage                ErrorCode = "STORAGE"
)

// Exit statuses used by the one-shot CLI commands. 1 is left to cobra for usage errors.
const (
	ExitOK = iota
	ExitUnknown
	ExitInvalidAmount
	ExitAccountBlocked
	ExitDuplicateAccountNumber
	ExitNotFound
	ExitCorruptData
	ExitInvalidInput
	ExitStorage
)

type LedgerError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e LedgerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is lets errors.Is match on the code alone, so New(ErrNotFound, "", nil) works as a target.
func (e LedgerError) Is(target error) bool {
	var t LedgerError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func New(code ErrorCode, message string, details interface{}) LedgerError {
	return LedgerError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

func Newf(code ErrorCode, format string, args ...interface{}) LedgerError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// CodeOf returns the code of the first LedgerError in err's chain, or "" when there is none.
func CodeOf(err error) ErrorCode {
	var le LedgerError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// DetailsOf returns the details attached to the first LedgerError in err's chain.
func DetailsOf(err error) interface{} {
	var le LedgerError
	if errors.As(err, &le) {
		return le.Details
	}
	return nil
}

func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch CodeOf(err) {
	case ErrInvalidAmount:
		return ExitInvalidAmount
	case ErrAccountBlocked:
		return ExitAccountBlocked
	case ErrDuplicateAccountNumber:
		return ExitDuplicateAccountNumber
	case ErrNotFound:
		return ExitNotFound
	case ErrCorruptData:
		return ExitCorruptData
	case ErrInvalidInput:
		return ExitInvalidInput
	case ErrStorage:
		return ExitStorage
	default:
		return ExitUnknown
	}
}
