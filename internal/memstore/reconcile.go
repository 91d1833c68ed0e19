package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
)

func (s *Store) SaveReconciliation(_ context.Context, r *bridge.Reconciliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	for _, existing := range s.reconciliations {
		if existing.OperationKey != r.OperationKey {
			continue
		}

		if existing.Receipt.Hash == "" {
			existing.Receipt = r.Receipt
		}

		existing.Status = bridge.ReconcilePending
		existing.LastError = r.LastError
		existing.ResolvedAt = nil
		existing.UpdatedAt = now
		*r = *existing

		return nil
	}

	r.ID = uuid.New()
	r.Status = bridge.ReconcilePending
	r.CreatedAt = now
	r.UpdatedAt = now

	c := *r
	s.reconciliations[r.ID] = &c

	return nil
}

func (s *Store) ListReconciliations(_ context.Context, filter bridge.ReconcileFilter) ([]*bridge.Reconciliation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*bridge.Reconciliation

	for _, r := range s.reconciliations {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}

		c := *r
		out = append(out, &c)
	}

	slices.SortFunc(out, func(a, b *bridge.Reconciliation) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (s *Store) RecordAttempt(_ context.Context, id uuid.UUID, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.reconciliations[id]; ok && r.Status == bridge.ReconcilePending {
		r.Attempts++
		r.LastError = lastError
		r.UpdatedAt = time.Now().UTC()
	}

	return nil
}

func (s *Store) ResolveReconciliation(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.reconciliations[id]; ok && r.Status == bridge.ReconcilePending {
		r.Status = bridge.ReconcileResolved
		r.ResolvedAt = new(time.Now().UTC())
		r.UpdatedAt = *r.ResolvedAt
	}

	return nil
}
