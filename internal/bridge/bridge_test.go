package bridge_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/audit"
	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	"github.com/MrJamesThe3rd/titledeed/internal/event"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger/memledger"
	"github.com/MrJamesThe3rd/titledeed/internal/memstore"
)

// mintTarget is a record that accepts one register_asset receipt.
type mintTarget struct {
	id uuid.UUID

	mu         sync.Mutex
	stored     *ledger.Receipt
	commitErr  error
	prepareErr error
}

func newTarget() *mintTarget { return &mintTarget{id: uuid.New()} }

func (t *mintTarget) Kind() ledger.Kind { return ledger.KindRegisterAsset }

func (t *mintTarget) RecordID() uuid.UUID { return t.id }

func (t *mintTarget) AuditMessage(r ledger.Receipt) string { return "minted token " + r.TokenIdentifier }

func (t *mintTarget) Recipients(context.Context) []string { return []string{"owner-1"} }

func (t *mintTarget) Prepare(context.Context) (ledger.Call, *ledger.Receipt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.prepareErr != nil {
		return ledger.Call{}, nil, t.prepareErr
	}

	if t.stored != nil {
		r := *t.stored
		return ledger.Call{}, &r, nil
	}

	return ledger.Call{OwnerAddress: "0xowner", ParcelIdentifier: "LR-" + t.id.String()}, nil, nil
}

func (t *mintTarget) Commit(_ context.Context, r ledger.Receipt) (ledger.Receipt, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.commitErr != nil {
		return ledger.Receipt{}, false, t.commitErr
	}

	if t.stored != nil {
		return *t.stored, false, nil
	}

	t.stored = &r

	return r, true, nil
}

func (t *mintTarget) failCommits(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.commitErr = err
}

type harness struct {
	ledger *memledger.Ledger
	store  *memstore.Store
	audit  *audit.Service
	reg    *prometheus.Registry
	bridge *bridge.Bridge
}

func newHarness(t *testing.T, client ledger.Client) *harness {
	t.Helper()

	h := &harness{store: memstore.New(), reg: prometheus.NewRegistry()}
	if client == nil {
		h.ledger = memledger.New()
		client = h.ledger
	}

	h.audit = audit.NewService(h.store)
	h.bridge = bridge.New(bridge.Config{
		Client:          client,
		Audit:           h.audit,
		Reconciliations: h.store,
		PromRegistry:    h.reg,
		SubmitTimeout:   200 * time.Millisecond,
		CommitRetries:   2,
		CommitBackoff:   time.Millisecond,
		Breaker:         bridge.BreakerConfig{ConsecutiveFailures: 3, Timeout: time.Minute},
	})

	return h
}

func (h *harness) auditEntries(t *testing.T, key string) []*audit.Entry {
	t.Helper()

	entries, err := h.audit.List(context.Background(), audit.ListFilter{OperationKey: &key})
	require.NoError(t, err)

	return entries
}

func TestExecute_TwiceCallsLedgerOnce(t *testing.T) {
	h := newHarness(t, nil)
	target := newTarget()
	key := ledger.OperationKey(target.Kind(), target.id)

	first, err := h.bridge.Execute(context.Background(), target, "official-1")
	require.NoError(t, err)
	assert.NotEmpty(t, first.Hash)
	assert.NotEmpty(t, first.TokenIdentifier)

	second, err := h.bridge.Execute(context.Background(), target, "official-1")
	require.NoError(t, err)
	assert.Equal(t, first.Hash, second.Hash)

	assert.Equal(t, 1, h.ledger.Calls(key))
	assert.Len(t, h.auditEntries(t, key), 1)
}

func TestExecute_ConcurrentCallersShareOneSubmit(t *testing.T) {
	h := newHarness(t, nil)
	h.ledger.Delay = 20 * time.Millisecond
	target := newTarget()

	const callers = 10

	var wg sync.WaitGroup

	hashes := make([]string, callers)
	errs := make([]error, callers)

	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			r, err := h.bridge.Execute(context.Background(), target, "official-1")
			hashes[i], errs[i] = r.Hash, err
		}()
	}

	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, hashes[0], hashes[i])
	}

	key := ledger.OperationKey(target.Kind(), target.id)
	assert.Equal(t, 1, h.ledger.Calls(key))
	assert.Len(t, h.auditEntries(t, key), 1)
}

func TestExecute_PrepareFailureSkipsLedger(t *testing.T) {
	h := newHarness(t, nil)
	target := newTarget()
	target.prepareErr = apperr.Prerequisite("owner wallet missing")

	_, err := h.bridge.Execute(context.Background(), target, "official-1")
	require.True(t, errors.Is(err, apperr.ErrPrerequisite))
	assert.Zero(t, h.ledger.Calls(ledger.OperationKey(target.Kind(), target.id)))
}

func TestExecute_LedgerFailureLeavesRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := ledger.NewMockClient(ctrl)
	client.EXPECT().LookupReceipt(gomock.Any(), gomock.Any()).Return(nil, nil)
	client.EXPECT().
		RegisterAsset(gomock.Any(), gomock.Any(), "0xowner", gomock.Any()).
		Return(ledger.Receipt{}, ledger.ErrReverted)

	h := newHarness(t, client)
	target := newTarget()

	_, err := h.bridge.Execute(context.Background(), target, "official-1")
	require.True(t, errors.Is(err, apperr.ErrLedger))
	assert.True(t, errors.Is(err, ledger.ErrReverted))
	assert.Nil(t, target.stored)

	pending, err := h.bridge.Pending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestExecute_LookupFailureDoesNotSubmit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	unreachable := errors.New("peer unreachable")

	client := ledger.NewMockClient(ctrl)
	client.EXPECT().LookupReceipt(gomock.Any(), gomock.Any()).Return(nil, unreachable)

	h := newHarness(t, client)
	target := newTarget()

	_, err := h.bridge.Execute(context.Background(), target, "official-1")
	require.True(t, errors.Is(err, apperr.ErrLedger))
	assert.True(t, errors.Is(err, unreachable))
	assert.Nil(t, target.stored)

	pending, err := h.bridge.Pending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestConfirmed(t *testing.T) {
	h := newHarness(t, nil)
	target := newTarget()
	key := ledger.OperationKey(target.Kind(), target.id)

	found, err := h.bridge.Confirmed(context.Background(), key)
	require.NoError(t, err)
	assert.Nil(t, found)

	r, err := h.bridge.Execute(context.Background(), target, "official-1")
	require.NoError(t, err)

	found, err = h.bridge.Confirmed(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, r.Hash, found.Hash)
}

// recorder keeps every published event.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) PublishAsync(_ event.Type, evt event.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, evt)

	return true
}

func TestExecute_NotifiesRecordParties(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	events := &recorder{}

	b := bridge.New(bridge.Config{
		Client:          memledger.New(),
		Audit:           audit.NewService(store),
		Reconciliations: store,
		Events:          events,
		CommitRetries:   1,
		CommitBackoff:   time.Millisecond,
	})

	target := newTarget()
	target.failCommits(errors.New("store offline"))

	_, err := b.Execute(ctx, target, "official-1")
	require.True(t, errors.Is(err, apperr.ErrReconciliation))

	b.Register(ledger.KindRegisterAsset, func(context.Context, uuid.UUID) (bridge.Target, error) {
		return target, nil
	})
	target.failCommits(nil)

	resolved, err := b.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, resolved)

	events.mu.Lock()
	defer events.mu.Unlock()

	types := make([]event.Type, 0, len(events.events))
	for _, evt := range events.events {
		types = append(types, evt.Type)
		assert.Equal(t, []string{"owner-1"}, evt.Data.Recipients, "event %s", evt.Type)
	}

	assert.Equal(t, []event.Type{event.TypeReconcilePending, event.TypeLedgerCommitted, event.TypeReconcileCompleted}, types)
}

func TestExecute_CommitFailureParksThenReconciles(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	target := newTarget()
	key := ledger.OperationKey(target.Kind(), target.id)

	h.bridge.Register(ledger.KindRegisterAsset, func(_ context.Context, id uuid.UUID) (bridge.Target, error) {
		require.Equal(t, target.id, id)
		return target, nil
	})

	target.failCommits(errors.New("database unavailable"))

	receipt, err := h.bridge.Execute(ctx, target, "official-1")
	require.True(t, errors.Is(err, apperr.ErrReconciliation))
	assert.NotEmpty(t, receipt.Hash)
	assert.Empty(t, h.auditEntries(t, key))

	pending, err := h.bridge.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, key, pending[0].OperationKey)
	assert.Equal(t, receipt.Hash, pending[0].Receipt.Hash)

	resolved, err := h.bridge.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, resolved)

	pending, err = h.bridge.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)

	target.failCommits(nil)

	resolved, err = h.bridge.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)

	require.NotNil(t, target.stored)
	assert.Equal(t, receipt.Hash, target.stored.Hash)
	assert.Len(t, h.auditEntries(t, key), 1)
	assert.Equal(t, 1, h.ledger.Calls(key))

	pending, err = h.bridge.Pending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestExecute_BreakerOpensOnTimeouts(t *testing.T) {
	h := newHarness(t, nil)
	h.ledger.Delay = time.Second

	for range 3 {
		_, err := h.bridge.Execute(context.Background(), newTarget(), "official-1")
		require.True(t, errors.Is(err, apperr.ErrLedger))
		assert.True(t, errors.Is(err, ledger.ErrTimeout))
	}

	_, err := h.bridge.Execute(context.Background(), newTarget(), "official-1")
	require.True(t, errors.Is(err, apperr.ErrLedger))
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
}

func TestExecute_RecordsOutcomes(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.bridge.Execute(context.Background(), newTarget(), "official-1")
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(h.reg, "titledeed_ledger_executions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunReconciler_StopsWithContext(t *testing.T) {
	h := newHarness(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		h.bridge.RunReconciler(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
