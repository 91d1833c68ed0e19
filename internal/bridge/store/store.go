package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SaveReconciliation(ctx context.Context, r *bridge.Reconciliation) error {
	query := `
		INSERT INTO reconciliations (
			operation_key, kind, record_id, receipt_hash, token_identifier, ledger_transaction_id,
			confirmed_at, actor_id, status, attempts, last_error, created_at, updated_at
		)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, NULLIF($8, ''), 'pending', 0, $9, NOW(), NOW())
		ON CONFLICT (operation_key) DO UPDATE SET
			receipt_hash = COALESCE(reconciliations.receipt_hash, EXCLUDED.receipt_hash),
			token_identifier = COALESCE(reconciliations.token_identifier, EXCLUDED.token_identifier),
			ledger_transaction_id = COALESCE(reconciliations.ledger_transaction_id, EXCLUDED.ledger_transaction_id),
			status = 'pending',
			last_error = EXCLUDED.last_error,
			resolved_at = NULL,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	confirmedAt := sql.NullTime{Time: r.Receipt.ConfirmedAt, Valid: !r.Receipt.ConfirmedAt.IsZero()}

	err := s.db.QueryRowContext(ctx, query,
		r.OperationKey, r.Kind, r.RecordID,
		r.Receipt.Hash, r.Receipt.TokenIdentifier, r.Receipt.LedgerTransactionID,
		confirmedAt, r.ActorID, r.LastError,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save reconciliation %s: %w", r.OperationKey, err)
	}

	return nil
}

func (s *Store) ListReconciliations(ctx context.Context, filter bridge.ReconcileFilter) ([]*bridge.Reconciliation, error) {
	query := `
		SELECT id, operation_key, kind, record_id, COALESCE(receipt_hash, ''), COALESCE(token_identifier, ''),
			COALESCE(ledger_transaction_id, ''), confirmed_at, COALESCE(actor_id, ''), status, attempts,
			COALESCE(last_error, ''), created_at, updated_at, resolved_at
		FROM reconciliations
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at
		LIMIT $2
	`

	var status *string
	if filter.Status != nil {
		status = new(string(*filter.Status))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list reconciliations: %w", err)
	}
	defer rows.Close()

	var out []*bridge.Reconciliation

	for rows.Next() {
		var (
			r           bridge.Reconciliation
			kind        string
			state       string
			confirmedAt sql.NullTime
		)

		if err := rows.Scan(
			&r.ID, &r.OperationKey, &kind, &r.RecordID, &r.Receipt.Hash, &r.Receipt.TokenIdentifier,
			&r.Receipt.LedgerTransactionID, &confirmedAt, &r.ActorID, &state, &r.Attempts,
			&r.LastError, &r.CreatedAt, &r.UpdatedAt, &r.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reconciliation: %w", err)
		}

		r.Kind = ledger.Kind(kind)
		r.Status = bridge.ReconcileStatus(state)
		r.Receipt.Key = r.OperationKey
		r.Receipt.ConfirmedAt = confirmedAt.Time

		out = append(out, &r)
	}

	return out, rows.Err()
}

func (s *Store) RecordAttempt(ctx context.Context, id uuid.UUID, lastError string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE reconciliations SET attempts = attempts + 1, last_error = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id, lastError)
	if err != nil {
		return fmt.Errorf("record reconciliation attempt: %w", err)
	}

	return nil
}

func (s *Store) ResolveReconciliation(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE reconciliations SET status = 'resolved', resolved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return fmt.Errorf("resolve reconciliation: %w", err)
	}

	return nil
}
