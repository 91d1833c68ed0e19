package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/audit"
	"github.com/MrJamesThe3rd/titledeed/internal/memstore"
)

func TestService_Append(t *testing.T) {
	recordID := uuid.New()

	tests := []struct {
		name    string
		entry   audit.Entry
		wantErr error
	}{
		{
			name:  "valid entry",
			entry: audit.Entry{OperationKey: "register_asset:1", Message: "Property minted as token 7", LedgerReceiptHash: "0xabc", RelatedRecordID: recordID},
		},
		{
			name:    "missing operation key",
			entry:   audit.Entry{Message: "Property minted"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "missing message",
			entry:   audit.Entry{OperationKey: "register_asset:2"},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := audit.NewService(memstore.New())

			written, err := svc.Append(context.Background(), &tt.entry)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.False(t, written)

				return
			}

			require.NoError(t, err)
			assert.True(t, written)
			assert.NotEqual(t, uuid.Nil, tt.entry.ID)
			assert.False(t, tt.entry.Timestamp.IsZero())
		})
	}
}

func TestService_AppendSameOperationOnce(t *testing.T) {
	ctx := context.Background()
	svc := audit.NewService(memstore.New())
	recordID := uuid.New()

	for range 3 {
		_, err := svc.Append(ctx, &audit.Entry{
			OperationKey:      "finalize_transfer:" + recordID.String(),
			Message:           "Final approval recorded on ledger",
			LedgerReceiptHash: "0xfeed",
			RelatedRecordID:   recordID,
		})
		require.NoError(t, err)
	}

	entries, err := svc.ForRecord(ctx, recordID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "0xfeed", entries[0].LedgerReceiptHash)
}

func TestService_ListFilters(t *testing.T) {
	ctx := context.Background()
	svc := audit.NewService(memstore.New())
	a, b := uuid.New(), uuid.New()

	for i, id := range []uuid.UUID{a, b, a} {
		_, err := svc.Append(ctx, &audit.Entry{
			OperationKey:    string(rune('a'+i)) + ":" + id.String(),
			Message:         "entry",
			RelatedRecordID: id,
		})
		require.NoError(t, err)
	}

	forA, err := svc.ForRecord(ctx, a)
	require.NoError(t, err)
	assert.Len(t, forA, 2)

	limited, err := svc.List(ctx, audit.ListFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
