package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/titledeed/internal/audit"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) AppendEntry(ctx context.Context, e *audit.Entry) (bool, error) {
	query := `
		INSERT INTO audit_log (operation_key, message, ledger_receipt_hash, related_record_id, actor_id, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NOW())
		ON CONFLICT (operation_key) DO NOTHING
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		e.OperationKey, e.Message, e.LedgerReceiptHash, e.RelatedRecordID, e.ActorID,
	).Scan(&e.ID, &e.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("insert audit entry: %w", err)
	}

	return true, nil
}

func (s *Store) ListEntries(ctx context.Context, filter audit.ListFilter) ([]*audit.Entry, error) {
	var (
		where []string
		args  []any
	)

	if filter.RelatedRecordID != nil {
		args = append(args, *filter.RelatedRecordID)
		where = append(where, fmt.Sprintf("related_record_id = $%d", len(args)))
	}

	if filter.OperationKey != nil {
		args = append(args, *filter.OperationKey)
		where = append(where, fmt.Sprintf("operation_key = $%d", len(args)))
	}

	query := `
		SELECT id, operation_key, message, COALESCE(ledger_receipt_hash, ''), related_record_id, COALESCE(actor_id, ''), created_at
		FROM audit_log
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*audit.Entry

	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.OperationKey, &e.Message, &e.LedgerReceiptHash, &e.RelatedRecordID, &e.ActorID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
