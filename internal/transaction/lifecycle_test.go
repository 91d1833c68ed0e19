package transaction_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/assignment"
	"github.com/MrJamesThe3rd/titledeed/internal/audit"
	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	"github.com/MrJamesThe3rd/titledeed/internal/event"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger/memledger"
	"github.com/MrJamesThe3rd/titledeed/internal/memstore"
	"github.com/MrJamesThe3rd/titledeed/internal/property"
	"github.com/MrJamesThe3rd/titledeed/internal/stage"
	"github.com/MrJamesThe3rd/titledeed/internal/transaction"
)

var (
	seller       = actor.New("seller-1", actor.RoleSeller).WithWallet("0xseller")
	buyer        = actor.New("buyer-1", actor.RoleBuyer).WithWallet("0xbuyer")
	intermediary = actor.New("agent-1", actor.RoleIntermediary).WithWallet("0xagent")
	official     = actor.New("official-1", actor.RoleOfficial).WithWallet("0xofficial")
)

// stageCounter counts stage change notifications.
type stageCounter struct {
	changes atomic.Int32
}

func (c *stageCounter) PublishAsync(t event.Type, _ event.Event) bool {
	if t == event.TypeStageChanged {
		c.changes.Add(1)
	}

	return true
}

type fixture struct {
	store  *memstore.Store
	ledger *memledger.Ledger
	bridge *bridge.Bridge
	audit  *audit.Service
	events *stageCounter
	svc    *transaction.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  memstore.New(),
		ledger: memledger.New(),
		events: &stageCounter{},
	}
	f.audit = audit.NewService(f.store)
	f.bridge = bridge.New(bridge.Config{
		Client:          f.ledger,
		Audit:           f.audit,
		Reconciliations: f.store,
		CommitRetries:   1,
		CommitBackoff:   time.Millisecond,
		SubmitTimeout:   time.Second,
	})

	props := property.NewService(f.store, f.bridge, nil, nil)
	f.svc = transaction.NewService(f.store, props, f.bridge, transaction.WithEvents(f.events))
	f.svc.RegisterResolvers(f.bridge)

	ctx := context.Background()

	rec, err := props.Submit(ctx, seller, property.SubmitParams{
		ParcelIdentifier: "LR-1001",
		Location:         "12 Harbour Road",
		DocumentURLs:     []string{"https://docs.example/title.pdf"},
	})
	require.NoError(t, err)
	require.NoError(t, props.Claim(ctx, rec.ID, official))

	rec, err = props.Review(ctx, rec.ID, official, true, "")
	require.NoError(t, err)
	require.True(t, rec.Minted())

	return f
}

func (f *fixture) create(t *testing.T) *transaction.Transaction {
	t.Helper()

	tx, err := f.svc.Create(context.Background(), intermediary, transaction.CreateParams{
		ParcelIdentifier: "LR-1001",
		Seller:           transaction.PartyParams{PartyID: seller.ID, DisplayName: "Sam Seller", WalletAddress: seller.WalletAddress},
		Buyer:            transaction.PartyParams{PartyID: buyer.ID, DisplayName: "Bea Buyer", WalletAddress: buyer.WalletAddress},
	})
	require.NoError(t, err)
	require.Equal(t, stage.Initiated, tx.Stage)

	return tx
}

// advanceTo drives a new transaction along the main path up to target.
func (f *fixture) advanceTo(t *testing.T, target stage.Stage) *transaction.Transaction {
	t.Helper()

	ctx := context.Background()
	tx := f.create(t)

	steps := []struct {
		reached stage.Stage
		run     func() (*transaction.Transaction, error)
	}{
		{stage.AwaitingSignatures, func() (*transaction.Transaction, error) { return f.svc.Initiate(ctx, tx.ID, intermediary) }},
		{stage.DocsShared, func() (*transaction.Transaction, error) {
			if _, err := f.svc.Accept(ctx, tx.ID, buyer); err != nil {
				return nil, err
			}

			return f.svc.Accept(ctx, tx.ID, seller)
		}},
		{stage.AwaitingVerification, func() (*transaction.Transaction, error) {
			docs := []transaction.DocumentInput{{Name: "Sale agreement", URL: "https://docs.example/agreement.pdf"}}
			if _, err := f.svc.ShareDocuments(ctx, tx.ID, intermediary, docs); err != nil {
				return nil, err
			}

			return f.svc.PublishForVerification(ctx, tx.ID, intermediary)
		}},
		{stage.Verified, func() (*transaction.Transaction, error) {
			if _, err := f.svc.Verify(ctx, tx.ID, buyer, transaction.DecisionAccept, ""); err != nil {
				return nil, err
			}

			return f.svc.Verify(ctx, tx.ID, seller, transaction.DecisionAccept, "")
		}},
		{stage.UnderReview, func() (*transaction.Transaction, error) {
			if err := f.svc.Claim(ctx, tx.ID, official); err != nil {
				return nil, err
			}

			return f.svc.AuthorizeTransferAgent(ctx, tx.ID, seller)
		}},
		{stage.Finalized, func() (*transaction.Transaction, error) {
			return f.svc.Review(ctx, tx.ID, official, transaction.DecisionAccept, "")
		}},
	}

	for _, step := range steps {
		if tx.Stage == target {
			break
		}

		var err error
		tx, err = step.run()
		require.NoError(t, err, "moving to %s", step.reached)
		require.Equal(t, step.reached, tx.Stage)
	}

	return tx
}

func TestLifecycle_FinalizeTransfersOwnership(t *testing.T) {
	f := newFixture(t)

	tx := f.advanceTo(t, stage.Finalized)

	assert.NotEmpty(t, tx.LedgerTransactionID)
	assert.NotEmpty(t, tx.InitiationReceiptHash)
	assert.NotEmpty(t, tx.AgentAuthorizationReceiptHash)
	assert.NotEmpty(t, tx.LedgerReceiptHash)
	assert.NotNil(t, tx.FinalizedAt)
	assert.Equal(t, buyer.WalletAddress, f.ledger.OwnerOf(tx.TokenIdentifier))

	entries, err := f.audit.ForRecord(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestAccept_ConcurrentSignaturesAdvanceOnce(t *testing.T) {
	for range 25 {
		f := newFixture(t)
		tx := f.advanceTo(t, stage.AwaitingSignatures)
		before := f.events.changes.Load()

		var wg sync.WaitGroup

		errs := make([]error, 2)

		for i, a := range []actor.Actor{buyer, seller} {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, errs[i] = f.svc.Accept(context.Background(), tx.ID, a)
			}()
		}

		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		got, err := f.svc.Get(context.Background(), tx.ID)
		require.NoError(t, err)
		assert.Equal(t, stage.DocsShared, got.Stage)
		assert.Equal(t, int32(1), f.events.changes.Load()-before)
	}
}

func TestAccept_TwiceIsNoop(t *testing.T) {
	f := newFixture(t)
	tx := f.advanceTo(t, stage.AwaitingSignatures)

	_, err := f.svc.Accept(context.Background(), tx.ID, buyer)
	require.NoError(t, err)

	got, err := f.svc.Accept(context.Background(), tx.ID, buyer)
	require.NoError(t, err)
	assert.Equal(t, stage.AwaitingSignatures, got.Stage)
	assert.True(t, got.Buyer.HasAccepted())
	assert.Nil(t, got.Seller.Accepted)
}

func TestDecline(t *testing.T) {
	t.Run("before accepting rejects the transaction", func(t *testing.T) {
		f := newFixture(t)
		tx := f.advanceTo(t, stage.AwaitingSignatures)

		got, err := f.svc.Decline(context.Background(), tx.ID, seller, "price changed")
		require.NoError(t, err)
		assert.Equal(t, stage.Rejected, got.Stage)
		assert.False(t, got.Seller.HasAccepted())
		assert.Equal(t, "price changed", got.Seller.RejectionComment)
	})

	t.Run("after accepting is refused", func(t *testing.T) {
		f := newFixture(t)
		tx := f.advanceTo(t, stage.AwaitingSignatures)

		_, err := f.svc.Accept(context.Background(), tx.ID, seller)
		require.NoError(t, err)

		_, err = f.svc.Decline(context.Background(), tx.ID, seller, "changed my mind")
		require.Error(t, err)

		got, err := f.svc.Get(context.Background(), tx.ID)
		require.NoError(t, err)
		assert.Equal(t, stage.AwaitingSignatures, got.Stage)
	})

	t.Run("needs a reason", func(t *testing.T) {
		f := newFixture(t)
		tx := f.advanceTo(t, stage.AwaitingSignatures)

		_, err := f.svc.Decline(context.Background(), tx.ID, buyer, "  ")
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})
}

func TestVerify_RejectionThenRevisedDocuments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tx := f.advanceTo(t, stage.AwaitingVerification)

	_, err := f.svc.Verify(ctx, tx.ID, seller, transaction.DecisionAccept, "")
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, tx.ID, buyer, transaction.DecisionReject, "")
	require.True(t, errors.Is(err, apperr.ErrValidation), "rejection without a comment")

	got, err := f.svc.Verify(ctx, tx.ID, buyer, transaction.DecisionReject, "survey page missing")
	require.NoError(t, err)
	assert.Equal(t, stage.AwaitingVerification, got.Stage)
	assert.True(t, got.Buyer.HasRejected())

	got, err = f.svc.ShareDocuments(ctx, tx.ID, intermediary, []transaction.DocumentInput{
		{Name: "Survey", URL: "https://docs.example/survey.pdf"},
	})
	require.NoError(t, err)
	assert.Len(t, got.SharedDocuments, 2)
	assert.Nil(t, got.Buyer.DocumentsVerified)
	assert.True(t, got.Seller.HasVerified())

	got, err = f.svc.Verify(ctx, tx.ID, buyer, transaction.DecisionAccept, "")
	require.NoError(t, err)
	assert.Equal(t, stage.Verified, got.Stage)
}

func TestShareDocuments_OnlyWhileOpen(t *testing.T) {
	f := newFixture(t)
	tx := f.advanceTo(t, stage.AwaitingVerification)

	_, err := f.svc.ShareDocuments(context.Background(), tx.ID, intermediary, []transaction.DocumentInput{
		{Name: "Extra", URL: "https://docs.example/extra.pdf"},
	})

	var te *stage.TransitionError
	assert.ErrorAs(t, err, &te)
}

func TestWithdraw_NeedsComment(t *testing.T) {
	f := newFixture(t)
	tx := f.advanceTo(t, stage.AwaitingVerification)

	_, err := f.svc.Withdraw(context.Background(), tx.ID, intermediary, "")
	require.Error(t, err)

	got, err := f.svc.Withdraw(context.Background(), tx.ID, intermediary, "buyer lost financing")
	require.NoError(t, err)
	assert.Equal(t, stage.Rejected, got.Stage)
}

func TestClaim_OneOfficialWins(t *testing.T) {
	f := newFixture(t)
	tx := f.advanceTo(t, stage.Verified)

	const officials = 8

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
		lost atomic.Int32
	)

	for i := range officials {
		wg.Add(1)

		go func() {
			defer wg.Done()

			o := actor.New("official-"+string(rune('a'+i)), actor.RoleOfficial).WithWallet("0xoff")

			err := f.svc.Claim(context.Background(), tx.ID, o)

			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, assignment.ErrAlreadyClaimed):
				lost.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(officials-1), lost.Load())

	got, err := f.svc.Get(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, stage.UnderReview, got.Stage)
	assert.NotEmpty(t, got.AssignedOfficial)
}

func TestClaim_SameOfficialAgainIsNoop(t *testing.T) {
	f := newFixture(t)
	tx := f.advanceTo(t, stage.Verified)

	require.NoError(t, f.svc.Claim(context.Background(), tx.ID, official))
	require.NoError(t, f.svc.Claim(context.Background(), tx.ID, official))
}

func TestReview_FinalizeTwiceCallsLedgerOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tx := f.advanceTo(t, stage.Finalized)

	again, err := f.svc.Review(ctx, tx.ID, official, transaction.DecisionAccept, "")
	require.NoError(t, err)
	assert.Equal(t, tx.LedgerReceiptHash, again.LedgerReceiptHash)

	key := ledger.OperationKey(ledger.KindFinalizeTransfer, tx.ID)
	assert.Equal(t, 1, f.ledger.Calls(key))

	entries, err := f.audit.List(ctx, audit.ListFilter{OperationKey: &key})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReview_FinalizeNeedsAgentAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tx := f.advanceTo(t, stage.Verified)

	require.NoError(t, f.svc.Claim(ctx, tx.ID, official))

	_, err := f.svc.Review(ctx, tx.ID, official, transaction.DecisionAccept, "")
	assert.True(t, errors.Is(err, apperr.ErrPrerequisite))
	assert.Zero(t, f.ledger.Calls(ledger.OperationKey(ledger.KindFinalizeTransfer, tx.ID)))
}

func TestReview_RejectNeedsComment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tx := f.advanceTo(t, stage.UnderReview)

	_, err := f.svc.Review(ctx, tx.ID, official, transaction.DecisionReject, "")
	require.Error(t, err)

	got, err := f.svc.Review(ctx, tx.ID, official, transaction.DecisionReject, "lien on title")
	require.NoError(t, err)
	assert.Equal(t, stage.Rejected, got.Stage)
	assert.Equal(t, "lien on title", got.ReviewComment)
}

func TestInitiate_LostResponseRetriesWithoutResubmitting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tx := f.create(t)

	f.ledger.Inject(ledger.KindInitiateTransaction, memledger.FaultLoseResponse)

	_, err := f.svc.Initiate(ctx, tx.ID, intermediary)
	require.True(t, errors.Is(err, apperr.ErrLedger))

	got, err := f.svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, stage.Initiated, got.Stage)

	got, err = f.svc.Initiate(ctx, tx.ID, intermediary)
	require.NoError(t, err)
	assert.Equal(t, stage.AwaitingSignatures, got.Stage)
	assert.Equal(t, 1, f.ledger.Calls(ledger.OperationKey(ledger.KindInitiateTransaction, tx.ID)))
}

func TestInitiate_DeclinedLeavesRecordUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tx := f.create(t)

	f.ledger.Inject(ledger.KindInitiateTransaction, memledger.FaultDecline)

	_, err := f.svc.Initiate(ctx, tx.ID, intermediary)
	require.True(t, errors.Is(err, apperr.ErrLedger))

	got, err := f.svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, stage.Initiated, got.Stage)
	assert.Empty(t, got.LedgerTransactionID)
}

func TestInitiate_CommitFailureIsReconciled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tx := f.create(t)

	f.store.FailCommits(errors.New("connection reset"))

	_, err := f.svc.Initiate(ctx, tx.ID, intermediary)
	require.True(t, errors.Is(err, apperr.ErrReconciliation))

	got, err := f.svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, stage.Initiated, got.Stage)

	pending, err := f.bridge.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ledger.OperationKey(ledger.KindInitiateTransaction, tx.ID), pending[0].OperationKey)

	f.store.FailCommits(nil)

	resolved, err := f.bridge.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)

	got, err = f.svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, stage.AwaitingSignatures, got.Stage)
	assert.Equal(t, pending[0].Receipt.Hash, got.InitiationReceiptHash)

	pending, err = f.bridge.Pending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Equal(t, 1, f.ledger.Calls(ledger.OperationKey(ledger.KindInitiateTransaction, tx.ID)))
}

func TestCreate_Prerequisites(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		parcel string
		seller string
		buyer  string
		want   error
	}{
		{name: "unknown parcel", parcel: "LR-404", seller: seller.WalletAddress, buyer: buyer.WalletAddress, want: apperr.ErrPrerequisite},
		{name: "seller does not own parcel", parcel: "LR-1001", seller: "0xsomeoneelse", buyer: buyer.WalletAddress, want: apperr.ErrPrerequisite},
		{name: "missing buyer wallet", parcel: "LR-1001", seller: seller.WalletAddress, buyer: "", want: apperr.ErrPrerequisite},
		{name: "same wallet", parcel: "LR-1001", seller: seller.WalletAddress, buyer: seller.WalletAddress, want: apperr.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), intermediary, transaction.CreateParams{
				ParcelIdentifier: tt.parcel,
				Seller:           transaction.PartyParams{PartyID: seller.ID, WalletAddress: tt.seller},
				Buyer:            transaction.PartyParams{PartyID: buyer.ID, WalletAddress: tt.buyer},
			})
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestReview_SubmitTimeoutLeavesRecordThenRetrySucceeds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tx := f.advanceTo(t, stage.UnderReview)
	key := ledger.OperationKey(ledger.KindFinalizeTransfer, tx.ID)

	f.ledger.Delay = 2 * time.Second

	_, err := f.svc.Review(ctx, tx.ID, official, transaction.DecisionAccept, "")
	require.True(t, errors.Is(err, apperr.ErrLedger), "got %v", err)
	assert.True(t, errors.Is(err, ledger.ErrTimeout))

	got, err := f.svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, stage.UnderReview, got.Stage)
	assert.Empty(t, got.LedgerReceiptHash)
	assert.Nil(t, got.FinalizedAt)

	f.ledger.Delay = 0

	got, err = f.svc.Review(ctx, tx.ID, official, transaction.DecisionAccept, "")
	require.NoError(t, err)
	assert.Equal(t, stage.Finalized, got.Stage)
	assert.NotEmpty(t, got.LedgerReceiptHash)
	assert.Equal(t, 1, f.ledger.Calls(key))

	entries, err := f.audit.List(ctx, audit.ListFilter{OperationKey: &key})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, got.LedgerReceiptHash, entries[0].LedgerReceiptHash)
}

func TestVerify_SellerRejectionKeepsBuyerAcceptance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tx := f.advanceTo(t, stage.DocsShared)

	_, err := f.svc.ShareDocuments(ctx, tx.ID, intermediary, []transaction.DocumentInput{
		{Name: "Sale agreement", URL: "https://docs.example/agreement.pdf"},
		{Name: "Title plan", URL: "https://docs.example/plan.pdf"},
	})
	require.NoError(t, err)

	_, err = f.svc.PublishForVerification(ctx, tx.ID, intermediary)
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, tx.ID, buyer, transaction.DecisionAccept, "")
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, tx.ID, seller, transaction.DecisionReject, "missing signature page")
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, stage.AwaitingVerification, got.Stage)
	assert.Len(t, got.SharedDocuments, 2)
	assert.True(t, got.Seller.HasRejected())
	assert.Equal(t, "missing signature page", got.Seller.RejectionComment)
	assert.True(t, got.Buyer.HasVerified())
}

func TestReview_RejectDuringInFlightFinalizeKeepsLedgerOutcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tx := f.advanceTo(t, stage.UnderReview)
	key := ledger.OperationKey(ledger.KindFinalizeTransfer, tx.ID)

	f.ledger.Delay = 200 * time.Millisecond

	var (
		wg       sync.WaitGroup
		approved *transaction.Transaction
		err      error
	)

	wg.Go(func() {
		approved, err = f.svc.Review(ctx, tx.ID, official, transaction.DecisionAccept, "")
	})

	time.Sleep(50 * time.Millisecond)

	rejected, rejectErr := f.svc.Review(ctx, tx.ID, official, transaction.DecisionReject, "changed my mind")
	require.NoError(t, rejectErr)
	assert.Equal(t, stage.Rejected, rejected.Stage)

	wg.Wait()
	require.NoError(t, err)
	assert.Equal(t, stage.Finalized, approved.Stage)

	receipt, lookupErr := f.ledger.LookupReceipt(ctx, key)
	require.NoError(t, lookupErr)
	require.NotNil(t, receipt)

	got, getErr := f.svc.Get(ctx, tx.ID)
	require.NoError(t, getErr)
	assert.Equal(t, stage.Finalized, got.Stage)
	assert.Equal(t, receipt.Hash, got.LedgerReceiptHash)
	assert.Equal(t, buyer.WalletAddress, f.ledger.OwnerOf(got.TokenIdentifier))

	pending, pendingErr := f.bridge.Pending(ctx, 10)
	require.NoError(t, pendingErr)
	assert.Empty(t, pending)
}

func TestReview_RejectAfterLandedFinalizeIsRefused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tx := f.advanceTo(t, stage.UnderReview)
	key := ledger.OperationKey(ledger.KindFinalizeTransfer, tx.ID)

	f.ledger.Inject(ledger.KindFinalizeTransfer, memledger.FaultLoseResponse)

	_, err := f.svc.Review(ctx, tx.ID, official, transaction.DecisionAccept, "")
	require.True(t, errors.Is(err, apperr.ErrLedger))

	got, err := f.svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, stage.UnderReview, got.Stage)

	_, err = f.svc.Review(ctx, tx.ID, official, transaction.DecisionReject, "changed my mind")
	require.True(t, errors.Is(err, apperr.ErrConcurrency), "got %v", err)

	got, err = f.svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, stage.Finalized, got.Stage)
	assert.NotEmpty(t, got.LedgerReceiptHash)
	assert.Empty(t, got.ReviewComment)
	assert.Equal(t, 1, f.ledger.Calls(key))

	entries, err := f.audit.ForRecord(ctx, tx.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
