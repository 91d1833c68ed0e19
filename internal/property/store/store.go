package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
	"github.com/MrJamesThe3rd/titledeed/internal/property"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectPropertyColumns = `
	id, status, parcel_identifier, location, owner_id, owner_wallet_address, document_urls,
	COALESCE(assigned_official, ''), COALESCE(review_comment, ''), COALESCE(reviewed_by, ''),
	COALESCE(ledger_receipt_hash, ''), COALESCE(token_identifier, ''),
	submitted_at, reviewed_at
`

func scanProperty(s scanner) (*property.Record, error) {
	var (
		r    property.Record
		docs []byte
	)

	err := s.Scan(
		&r.ID, &r.Status, &r.ParcelIdentifier, &r.Location, &r.OwnerID, &r.OwnerWalletAddress, &docs,
		&r.AssignedOfficial, &r.ReviewComment, &r.ReviewedBy,
		&r.LedgerReceiptHash, &r.TokenIdentifier,
		&r.SubmittedAt, &r.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(docs, &r.DocumentURLs); err != nil {
		return nil, fmt.Errorf("decoding document urls of %s: %w", r.ID, err)
	}

	return &r, nil
}

func (s *Store) CreateProperty(ctx context.Context, r *property.Record) error {
	docs, err := json.Marshal(r.DocumentURLs)
	if err != nil {
		return fmt.Errorf("encoding document urls: %w", err)
	}

	query := `
		INSERT INTO properties (status, parcel_identifier, location, owner_id, owner_wallet_address, document_urls, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, NOW())
		RETURNING id, submitted_at
	`

	err = s.db.QueryRowContext(ctx, query,
		r.Status, r.ParcelIdentifier, r.Location, r.OwnerID, r.OwnerWalletAddress, docs,
	).Scan(&r.ID, &r.SubmittedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Validation("parcel %s is already registered or under review", r.ParcelIdentifier)
	}

	if err != nil {
		return fmt.Errorf("creating property: %w", err)
	}

	return nil
}

func (s *Store) GetProperty(ctx context.Context, id uuid.UUID) (*property.Record, error) {
	query := `SELECT ` + selectPropertyColumns + ` FROM properties WHERE id = $1`

	r, err := scanProperty(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, property.ErrNotFound
		}

		return nil, fmt.Errorf("getting property: %w", err)
	}

	return r, nil
}

func (s *Store) FindApprovedByParcel(ctx context.Context, parcelIdentifier string) (*property.Record, error) {
	query := `SELECT ` + selectPropertyColumns + ` FROM properties WHERE parcel_identifier = $1 AND status = $2`

	r, err := scanProperty(s.db.QueryRowContext(ctx, query, parcelIdentifier, property.StatusApproved))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, property.ErrNotFound
		}

		return nil, fmt.Errorf("finding property by parcel: %w", err)
	}

	return r, nil
}

func (s *Store) ListProperties(ctx context.Context, filter property.ListFilter) ([]*property.Record, error) {
	query := `SELECT ` + selectPropertyColumns + ` FROM properties WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.OwnerID != nil {
		query += fmt.Sprintf(" AND owner_id = $%d", argIdx)

		args = append(args, *filter.OwnerID)
		argIdx++
	}

	if filter.AssignedOfficial != nil {
		query += fmt.Sprintf(" AND assigned_official = $%d", argIdx)

		args = append(args, *filter.AssignedOfficial)
	}

	if filter.Unassigned {
		query += " AND assigned_official IS NULL"
	}

	query += " ORDER BY submitted_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer rows.Close()

	var out []*property.Record

	for rows.Next() {
		r, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}

		out = append(out, r)
	}

	return out, rows.Err()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (s *Store) ClaimProperty(ctx context.Context, id uuid.UUID, officialID string) (bool, error) {
	query := `
		UPDATE properties SET assigned_official = $2
		WHERE id = $1 AND assigned_official IS NULL AND status = $3
	`

	ok, err := s.exec(ctx, query, id, officialID, property.StatusPending)
	if err != nil {
		return false, fmt.Errorf("claiming property: %w", err)
	}

	return ok, nil
}

func (s *Store) SetReviewed(ctx context.Context, id uuid.UUID, officialID string, status property.Status, comment string) (bool, error) {
	query := `
		UPDATE properties
		SET status = $3, review_comment = NULLIF($4, ''), reviewed_by = $2, reviewed_at = NOW()
		WHERE id = $1 AND assigned_official = $2 AND status = $5
	`

	ok, err := s.exec(ctx, query, id, officialID, status, comment, property.StatusPending)
	if err != nil {
		return false, fmt.Errorf("reviewing property: %w", err)
	}

	return ok, nil
}

func (s *Store) CommitMint(ctx context.Context, id uuid.UUID, r ledger.Receipt) (bool, error) {
	query := `
		UPDATE properties SET ledger_receipt_hash = $2, token_identifier = $3
		WHERE id = $1 AND ledger_receipt_hash IS NULL AND status = $4
	`

	ok, err := s.exec(ctx, query, id, r.Hash, r.TokenIdentifier, property.StatusApproved)
	if err != nil {
		return false, fmt.Errorf("committing mint receipt: %w", err)
	}

	return ok, nil
}
