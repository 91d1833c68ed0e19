// Package apperr holds the error categories shared by every component.
// Components wrap one of the sentinels with fmt.Errorf("...: %w", ...) and
// callers classify failures with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input or an illegal request for the current state.
	ErrValidation = errors.New("validation failed")
	// ErrConcurrency marks a lost conditional write.
	ErrConcurrency = errors.New("concurrent modification")
	// ErrPrerequisite marks missing identifiers required before a ledger call.
	ErrPrerequisite = errors.New("prerequisite missing")
	// ErrLedger marks a declined, reverted or timed out ledger submission.
	ErrLedger = errors.New("ledger submission failed")
	// ErrReconciliation marks a ledger success whose commit to the record store is still pending.
	ErrReconciliation = errors.New("reconciliation pending")

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Concurrency(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConcurrency, fmt.Sprintf(format, args...))
}

func Prerequisite(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrerequisite, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// Ledger wraps a ledger client failure, keeping both the category and the cause.
func Ledger(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrLedger, op, err)
}

// Reconciliation wraps a commit failure that was handed to the reconciler.
func Reconciliation(key string, err error) error {
	return fmt.Errorf("%w: operation %s: %w", ErrReconciliation, key, err)
}
