package apperr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
)

func TestWrappers(t *testing.T) {
	cause := errors.New("gateway timeout")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "Validation", err: apperr.Validation("comment is required"), want: apperr.ErrValidation},
		{name: "Concurrency", err: apperr.Concurrency("stage moved"), want: apperr.ErrConcurrency},
		{name: "Prerequisite", err: apperr.Prerequisite("token missing"), want: apperr.ErrPrerequisite},
		{name: "Forbidden", err: apperr.Forbidden("not a party"), want: apperr.ErrForbidden},
		{name: "Ledger", err: apperr.Ledger("finalize_transfer", cause), want: apperr.ErrLedger},
		{name: "Reconciliation", err: apperr.Reconciliation("k", cause), want: apperr.ErrReconciliation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.want)
		})
	}

	assert.ErrorIs(t, apperr.Ledger("x", cause), cause)
	assert.ErrorIs(t, apperr.Reconciliation("x", cause), cause)
}
