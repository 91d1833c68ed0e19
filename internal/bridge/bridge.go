// Package bridge executes irreversible ledger actions against records in three
// steps: prepare (read identifiers), submit (call the ledger without holding
// any record lock) and commit (conditional write of the receipt, then audit).
// A ledger success whose commit fails is parked for the reconciler.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/audit"
	"github.com/MrJamesThe3rd/titledeed/internal/event"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

// Target is one irreversible action on one record.
type Target interface {
	Kind() ledger.Kind
	RecordID() uuid.UUID
	// Prepare gathers the identifiers for the call. A non-nil receipt means
	// the action is already committed on the record.
	Prepare(ctx context.Context) (ledger.Call, *ledger.Receipt, error)
	// Commit stores r with a write conditioned on the receipt being unset.
	// When a receipt is already present it returns that one and false.
	Commit(ctx context.Context, r ledger.Receipt) (ledger.Receipt, bool, error)
	AuditMessage(r ledger.Receipt) string
	// Recipients are the parties notified about the action besides officials.
	Recipients(ctx context.Context) []string
}

// AuditLog is satisfied by *audit.Service.
type AuditLog interface {
	Append(ctx context.Context, e *audit.Entry) (bool, error)
}

type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

type Config struct {
	Client          ledger.Client
	Audit           AuditLog
	Reconciliations ReconcileRepository
	Guard           Guard
	Events          event.Publisher
	Logger          *slog.Logger
	PromRegistry    prometheus.Registerer

	SubmitTimeout  time.Duration
	CommitRetries  uint64
	CommitBackoff  time.Duration
	Breaker        BreakerConfig
	ReconcileBatch int
	// MaxAttempts is how many reconciler passes a row gets before it is
	// reported as needing an operator. It keeps being retried afterwards.
	MaxAttempts int
}

type Bridge struct {
	cfg       Config
	client    ledger.Client
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *metrics
	resolvers map[ledger.Kind]Resolver
}

func New(cfg Config) *Bridge {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	if cfg.Guard == nil {
		cfg.Guard = NewLocalGuard()
	}

	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 30 * time.Second
	}

	if cfg.CommitRetries == 0 {
		cfg.CommitRetries = 3
	}

	if cfg.CommitBackoff <= 0 {
		cfg.CommitBackoff = 100 * time.Millisecond
	}

	if cfg.ReconcileBatch <= 0 {
		cfg.ReconcileBatch = 50
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}

	b := &Bridge{
		cfg:       cfg,
		client:    cfg.Client,
		logger:    cfg.Logger.With("component", "bridge"),
		tracer:    otel.Tracer("github.com/MrJamesThe3rd/titledeed/internal/bridge"),
		resolvers: make(map[ledger.Kind]Resolver),
	}
	b.breaker = newBreaker(cfg.Breaker, b.logger)

	if cfg.PromRegistry != nil {
		b.metrics = newMetrics(cfg.PromRegistry)
	}

	return b
}

func newBreaker(cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ledger",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// a reverted or declined call means the ledger is reachable
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ledger.ErrReverted) || errors.Is(err, ledger.ErrDeclined)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("ledger circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Execute runs t and returns the committed receipt. Running the same target
// again after it committed returns the stored receipt without a ledger call.
func (b *Bridge) Execute(ctx context.Context, t Target, actorID string) (ledger.Receipt, error) {
	kind := t.Kind()
	key := ledger.OperationKey(kind, t.RecordID())

	ctx, span := b.tracer.Start(ctx, "bridge."+string(kind), trace.WithAttributes(
		attribute.String("ledger.operation_key", key),
		attribute.String("record.id", t.RecordID().String()),
	))
	defer span.End()

	call, existing, err := t.Prepare(ctx)
	if err != nil {
		b.observe(kind, "prerequisite")
		span.SetStatus(codes.Error, "prepare failed")
		span.RecordError(err)

		return ledger.Receipt{}, err
	}

	if existing != nil {
		b.observe(kind, "already_committed")
		return *existing, nil
	}

	call.Kind = kind
	call.Key = key

	receipt, err := b.cfg.Guard.Do(ctx, key, func(ctx context.Context) (ledger.Receipt, error) {
		return b.submit(ctx, call)
	})
	if err != nil {
		b.observe(kind, "ledger_error")
		span.SetStatus(codes.Error, "submit failed")
		span.RecordError(err)

		return ledger.Receipt{}, err
	}

	receipt, err = b.commit(ctx, t, key, receipt, actorID)
	if err != nil {
		b.observe(kind, "reconciliation_pending")
		span.SetStatus(codes.Error, "commit failed")
		span.RecordError(err)

		return receipt, err
	}

	b.observe(kind, "committed")

	return receipt, nil
}

// Confirmed asks the ledger whether the operation with key landed. It returns
// nil without error when it did not.
func (b *Bridge) Confirmed(ctx context.Context, key string) (*ledger.Receipt, error) {
	found, err := b.client.LookupReceipt(ctx, key)
	if err != nil {
		return nil, apperr.Ledger(key, fmt.Errorf("lookup receipt: %w", err))
	}

	return found, nil
}

func (b *Bridge) submit(ctx context.Context, call ledger.Call) (ledger.Receipt, error) {
	ctx, span := b.tracer.Start(ctx, "bridge.submit")
	defer span.End()

	// a previous attempt may have landed after its caller gave up
	found, err := b.client.LookupReceipt(ctx, call.Key)
	if err != nil {
		b.logger.Warn("receipt lookup failed, not submitting", "key", call.Key, "error", err)
		return ledger.Receipt{}, apperr.Ledger(string(call.Kind), fmt.Errorf("lookup receipt: %w", err))
	}

	if found != nil {
		b.logger.Info("receipt already on ledger", "key", call.Key, "hash", found.Hash)
		return *found, nil
	}

	submitCtx, cancel := context.WithTimeout(ctx, b.cfg.SubmitTimeout)
	defer cancel()

	start := time.Now()

	out, err := b.breaker.Execute(func() (any, error) {
		return ledger.Submit(submitCtx, b.client, call)
	})

	if b.metrics != nil {
		b.metrics.submitDuration.WithLabelValues(string(call.Kind)).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ledger.ErrTimeout) {
			err = fmt.Errorf("%w: %w", ledger.ErrTimeout, err)
		}

		b.logger.Warn("ledger submit failed", "key", call.Key, "error", err)

		return ledger.Receipt{}, apperr.Ledger(string(call.Kind), err)
	}

	receipt, _ := out.(ledger.Receipt)
	if receipt.Key == "" {
		receipt.Key = call.Key
	}

	return receipt, nil
}

func (b *Bridge) commit(ctx context.Context, t Target, key string, receipt ledger.Receipt, actorID string) (ledger.Receipt, error) {
	stored, committed, err := b.commitWithRetry(ctx, t, receipt)
	if err != nil {
		b.park(ctx, t, key, receipt, actorID, err)
		return receipt, apperr.Reconciliation(key, err)
	}

	if committed {
		b.publish(event.TypeLedgerCommitted, t.RecordID(), t.Recipients(ctx), t.AuditMessage(stored), stored)
	}

	if err := b.appendAudit(ctx, t, key, stored, actorID); err != nil {
		b.park(ctx, t, key, stored, actorID, err)
	}

	return stored, nil
}

func (b *Bridge) commitWithRetry(ctx context.Context, t Target, receipt ledger.Receipt) (ledger.Receipt, bool, error) {
	var (
		stored    ledger.Receipt
		committed bool
	)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = b.cfg.CommitBackoff
	policy.MaxElapsedTime = 0

	op := func() error {
		s, c, err := t.Commit(ctx, receipt)
		if err != nil {
			if errors.Is(err, apperr.ErrConcurrency) || errors.Is(err, apperr.ErrValidation) || errors.Is(err, apperr.ErrNotFound) {
				return backoff.Permanent(err)
			}

			return err
		}

		stored, committed = s, c

		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, b.cfg.CommitRetries), ctx))

	return stored, committed, err
}

func (b *Bridge) appendAudit(ctx context.Context, t Target, key string, r ledger.Receipt, actorID string) error {
	_, err := b.cfg.Audit.Append(ctx, &audit.Entry{
		OperationKey:      key,
		Message:           t.AuditMessage(r),
		LedgerReceiptHash: r.Hash,
		RelatedRecordID:   t.RecordID(),
		ActorID:           actorID,
	})

	return err
}

func (b *Bridge) publish(t event.Type, recordID uuid.UUID, recipients []string, msg string, detail any) {
	if b.cfg.Events == nil {
		return
	}

	b.cfg.Events.PublishAsync(t, event.New(t, event.Notification{
		RecordID:   recordID,
		Recipients: recipients,
		Message:    msg,
		Detail:     detail,
	}))
}

func (b *Bridge) observe(kind ledger.Kind, outcome string) {
	if b.metrics != nil {
		b.metrics.executions.WithLabelValues(string(kind), outcome).Inc()
	}
}
