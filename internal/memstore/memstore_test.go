package memstore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
	"github.com/MrJamesThe3rd/titledeed/internal/memstore"
	"github.com/MrJamesThe3rd/titledeed/internal/stage"
	"github.com/MrJamesThe3rd/titledeed/internal/transaction"
)

func seed(t *testing.T, s *memstore.Store, st stage.Stage) *transaction.Transaction {
	t.Helper()

	tx := &transaction.Transaction{
		Stage:        st,
		Buyer:        transaction.Party{PartyID: "buyer-1"},
		Seller:       transaction.Party{PartyID: "seller-1"},
		Intermediary: transaction.Party{PartyID: "agent-1"},
	}
	require.NoError(t, s.CreateTransaction(context.Background(), tx))

	return tx
}

func TestStore_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	tx := seed(t, s, stage.DocsShared)

	got, err := s.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)

	got.Stage = stage.Finalized
	got.Buyer.Accepted = new(true)

	again, err := s.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, stage.DocsShared, again.Stage)
	assert.Nil(t, again.Buyer.Accepted)
}

func TestStore_SetAcceptedReportsCounterpart(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	tx := seed(t, s, stage.AwaitingSignatures)

	written, counterpart, err := s.SetAccepted(ctx, tx.ID, actor.RoleBuyer)
	require.NoError(t, err)
	assert.True(t, written)
	assert.False(t, counterpart)

	written, _, err = s.SetAccepted(ctx, tx.ID, actor.RoleBuyer)
	require.NoError(t, err)
	assert.False(t, written, "the flag is already set")

	written, counterpart, err = s.SetAccepted(ctx, tx.ID, actor.RoleSeller)
	require.NoError(t, err)
	assert.True(t, written)
	assert.True(t, counterpart)
}

func TestStore_AdvanceStageHasOneWinner(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	tx := seed(t, s, stage.AwaitingSignatures)

	_, _, err := s.SetAccepted(ctx, tx.ID, actor.RoleBuyer)
	require.NoError(t, err)
	_, _, err = s.SetAccepted(ctx, tx.ID, actor.RoleSeller)
	require.NoError(t, err)

	var (
		wg    sync.WaitGroup
		moved atomic.Int32
	)

	for range 10 {
		wg.Go(func() {
			ok, err := s.AdvanceStage(ctx, tx.ID, stage.AwaitingSignatures, stage.DocsShared, stage.GuardBothAccepted, transaction.StageChange{})
			assert.NoError(t, err)

			if ok {
				moved.Add(1)
			}
		})
	}

	wg.Wait()

	assert.EqualValues(t, 1, moved.Load())
}

func TestStore_AdvanceStageChecksGuard(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	tx := seed(t, s, stage.AwaitingSignatures)

	_, _, err := s.SetAccepted(ctx, tx.ID, actor.RoleBuyer)
	require.NoError(t, err)

	ok, err := s.AdvanceStage(ctx, tx.ID, stage.AwaitingSignatures, stage.DocsShared, stage.GuardBothAccepted, transaction.StageChange{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_AppendDocumentsOnlyGrows(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	tx := seed(t, s, stage.DocsShared)

	doc := func(name string) transaction.Document {
		return transaction.Document{Name: name, URL: "https://docs.example/" + name, UploadedBy: "agent-1", UploadedAt: time.Now()}
	}

	ok, err := s.AppendDocuments(ctx, tx.ID, "agent-1", []transaction.Document{doc("a.pdf")})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.AppendDocuments(ctx, tx.ID, "agent-2", []transaction.Document{doc("b.pdf")})
	require.NoError(t, err)
	assert.False(t, ok, "only the transaction's intermediary can share")

	ok, err = s.AppendDocuments(ctx, tx.ID, "agent-1", []transaction.Document{doc("c.pdf")})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, got.SharedDocuments, 2)
	assert.Equal(t, "a.pdf", got.SharedDocuments[0].Name)
	assert.Equal(t, "c.pdf", got.SharedDocuments[1].Name)
}

func TestStore_ReceiptsAreWriteOnce(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	tx := seed(t, s, stage.Initiated)

	ok, err := s.CommitInitiation(ctx, tx.ID, ledger.Receipt{Hash: "0x1", LedgerTransactionID: "7"})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.CommitInitiation(ctx, tx.ID, ledger.Receipt{Hash: "0x2", LedgerTransactionID: "8"})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "0x1", got.InitiationReceiptHash)
	assert.Equal(t, "7", got.LedgerTransactionID)
	assert.Equal(t, stage.AwaitingSignatures, got.Stage)
}

func TestStore_CommitFinalizationOverRejection(t *testing.T) {
	tests := []struct {
		name       string
		stage      stage.Stage
		authorized bool
		want       bool
	}{
		{name: "under review", stage: stage.UnderReview, authorized: true, want: true},
		{name: "rejected after agent authorization", stage: stage.Rejected, authorized: true, want: true},
		{name: "rejected before agent authorization", stage: stage.Rejected, want: false},
		{name: "verified", stage: stage.Verified, authorized: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := memstore.New()
			tx := &transaction.Transaction{Stage: tt.stage}
			if tt.authorized {
				tx.AgentAuthorizationReceiptHash = "0xagent"
			}

			require.NoError(t, s.CreateTransaction(ctx, tx))

			written, err := s.CommitFinalization(ctx, tx.ID, ledger.Receipt{Hash: "0xfinal"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, written)

			got, err := s.GetTransaction(ctx, tx.ID)
			require.NoError(t, err)

			if tt.want {
				assert.Equal(t, stage.Finalized, got.Stage)
				assert.Equal(t, "0xfinal", got.LedgerReceiptHash)
			} else {
				assert.Equal(t, tt.stage, got.Stage)
				assert.Empty(t, got.LedgerReceiptHash)
			}
		})
	}
}

func TestStore_ReconciliationRowPerOperation(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	for _, cause := range []string{"connection reset", "deadline exceeded"} {
		require.NoError(t, s.SaveReconciliation(ctx, &bridge.Reconciliation{
			OperationKey: "finalize_transfer:1",
			Kind:         ledger.KindFinalizeTransfer,
			Receipt:      ledger.Receipt{Hash: "0xabc"},
			LastError:    cause,
		}))
	}

	pending := bridge.ReconcilePending

	rows, err := s.ListReconciliations(ctx, bridge.ReconcileFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "deadline exceeded", rows[0].LastError)

	require.NoError(t, s.RecordAttempt(ctx, rows[0].ID, "still failing"))
	require.NoError(t, s.ResolveReconciliation(ctx, rows[0].ID))

	rows, err = s.ListReconciliations(ctx, bridge.ReconcileFilter{Status: &pending})
	require.NoError(t, err)
	assert.Empty(t, rows)

	all, err := s.ListReconciliations(ctx, bridge.ReconcileFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 1, all[0].Attempts)
	assert.NotNil(t, all[0].ResolvedAt)
}
