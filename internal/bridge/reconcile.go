package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/event"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

type ReconcileStatus string

const (
	ReconcilePending  ReconcileStatus = "pending"
	ReconcileResolved ReconcileStatus = "resolved"
)

// Reconciliation is a ledger action confirmed on the ledger whose commit or
// audit entry has not reached the record store yet.
type Reconciliation struct {
	ID           uuid.UUID
	OperationKey string
	Kind         ledger.Kind
	RecordID     uuid.UUID
	Receipt      ledger.Receipt
	ActorID      string
	Status       ReconcileStatus
	Attempts     int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResolvedAt   *time.Time
}

type ReconcileFilter struct {
	Status *ReconcileStatus
	Limit  int
}

type ReconcileRepository interface {
	// SaveReconciliation inserts r as pending, or refreshes the pending row
	// with the same operation key.
	SaveReconciliation(ctx context.Context, r *Reconciliation) error
	ListReconciliations(ctx context.Context, filter ReconcileFilter) ([]*Reconciliation, error)
	RecordAttempt(ctx context.Context, id uuid.UUID, lastError string) error
	ResolveReconciliation(ctx context.Context, id uuid.UUID) error
}

// Resolver rebuilds the target for a parked row.
type Resolver func(ctx context.Context, recordID uuid.UUID) (Target, error)

// Register makes parked actions of kind reconcilable.
func (b *Bridge) Register(kind ledger.Kind, r Resolver) {
	b.resolvers[kind] = r
}

func (b *Bridge) park(ctx context.Context, t Target, key string, r ledger.Receipt, actorID string, cause error) {
	row := &Reconciliation{
		OperationKey: key,
		Kind:         t.Kind(),
		RecordID:     t.RecordID(),
		Receipt:      r,
		ActorID:      actorID,
		Status:       ReconcilePending,
		LastError:    cause.Error(),
	}

	b.logger.Error("ledger action confirmed but not committed, parked for reconciliation",
		"key", key, "record_id", t.RecordID(), "receipt", r.Hash, "error", cause)

	if b.cfg.Reconciliations == nil {
		return
	}

	if err := b.cfg.Reconciliations.SaveReconciliation(context.WithoutCancel(ctx), row); err != nil {
		b.logger.Error("failed to park reconciliation, operator action required",
			"key", key, "record_id", t.RecordID(), "receipt", r.Hash, "error", err)

		return
	}

	if b.metrics != nil {
		b.metrics.reconcile.WithLabelValues("parked").Inc()
	}

	b.publish(event.TypeReconcilePending, t.RecordID(), t.Recipients(context.WithoutCancel(ctx)), "Ledger action awaiting reconciliation", row)
}

// Pending lists parked rows for operators.
func (b *Bridge) Pending(ctx context.Context, limit int) ([]*Reconciliation, error) {
	status := ReconcilePending

	return b.cfg.Reconciliations.ListReconciliations(ctx, ReconcileFilter{Status: &status, Limit: limit})
}

// Reconcile makes one pass over pending rows and returns how many it resolved.
func (b *Bridge) Reconcile(ctx context.Context) (int, error) {
	rows, err := b.Pending(ctx, b.cfg.ReconcileBatch)
	if err != nil {
		return 0, fmt.Errorf("list pending reconciliations: %w", err)
	}

	resolved := 0

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return resolved, err
		}

		if err := b.reconcileOne(ctx, row); err != nil {
			level := b.logger.Warn
			if row.Attempts+1 >= b.cfg.MaxAttempts {
				level = b.logger.Error
			}

			level("reconciliation attempt failed", "key", row.OperationKey, "attempts", row.Attempts+1, "error", err)

			if err := b.cfg.Reconciliations.RecordAttempt(ctx, row.ID, err.Error()); err != nil {
				b.logger.Error("failed to record reconciliation attempt", "key", row.OperationKey, "error", err)
			}

			if b.metrics != nil {
				b.metrics.reconcile.WithLabelValues("failed").Inc()
			}

			continue
		}

		resolved++
	}

	return resolved, nil
}

func (b *Bridge) reconcileOne(ctx context.Context, row *Reconciliation) error {
	resolve, ok := b.resolvers[row.Kind]
	if !ok {
		return fmt.Errorf("no resolver registered for %s", row.Kind)
	}

	t, err := resolve(ctx, row.RecordID)
	if err != nil {
		return fmt.Errorf("resolve target: %w", err)
	}

	receipt := row.Receipt
	if receipt.Hash == "" {
		found, err := b.client.LookupReceipt(ctx, row.OperationKey)
		if err != nil {
			return fmt.Errorf("lookup receipt: %w", err)
		}

		if found == nil {
			return fmt.Errorf("ledger has no receipt for %s", row.OperationKey)
		}

		receipt = *found
	}

	stored, committed, err := t.Commit(ctx, receipt)
	if err != nil {
		return fmt.Errorf("commit receipt: %w", err)
	}

	if err := b.appendAudit(ctx, t, row.OperationKey, stored, row.ActorID); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	if err := b.cfg.Reconciliations.ResolveReconciliation(ctx, row.ID); err != nil {
		return fmt.Errorf("mark resolved: %w", err)
	}

	recipients := t.Recipients(ctx)

	if committed {
		b.publish(event.TypeLedgerCommitted, row.RecordID, recipients, t.AuditMessage(stored), stored)
	}

	b.publish(event.TypeReconcileCompleted, row.RecordID, recipients, "Ledger action reconciled", row.OperationKey)

	if b.metrics != nil {
		b.metrics.reconcile.WithLabelValues("resolved").Inc()
	}

	b.logger.Info("reconciled ledger action", "key", row.OperationKey, "receipt", stored.Hash)

	return nil
}

// RunReconciler calls Reconcile every interval until ctx ends. Consecutive
// failing passes back off exponentially up to ten intervals.
func (b *Bridge) RunReconciler(ctx context.Context, interval time.Duration) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = interval
	policy.MaxInterval = 10 * interval
	policy.MaxElapsedTime = 0

	wait := interval

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if _, err := b.Reconcile(ctx); err != nil {
			b.logger.Error("reconciliation pass failed", "error", err)
			wait = policy.NextBackOff()

			continue
		}

		policy.Reset()
		wait = interval
	}
}
