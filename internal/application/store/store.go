package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/application"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectApplicationColumns = `
	id, applicant_id, status, profile, document_urls,
	COALESCE(assigned_official, ''), COALESCE(review_comment, ''), COALESCE(reviewed_by, ''),
	COALESCE(role_grant_receipt_hash, ''), submitted_at, reviewed_at
`

func scanApplication(s scanner) (*application.Application, error) {
	var (
		a             application.Application
		profile, docs []byte
	)

	err := s.Scan(
		&a.ID, &a.ApplicantID, &a.Status, &profile, &docs,
		&a.AssignedOfficial, &a.ReviewComment, &a.ReviewedBy,
		&a.RoleGrantReceiptHash, &a.SubmittedAt, &a.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(profile, &a.Profile); err != nil {
		return nil, fmt.Errorf("decoding profile of %s: %w", a.ID, err)
	}

	if err := json.Unmarshal(docs, &a.DocumentURLs); err != nil {
		return nil, fmt.Errorf("decoding document urls of %s: %w", a.ID, err)
	}

	return &a, nil
}

func (s *Store) CreateApplication(ctx context.Context, a *application.Application) error {
	profile, err := json.Marshal(a.Profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	docs, err := json.Marshal(a.DocumentURLs)
	if err != nil {
		return fmt.Errorf("encoding document urls: %w", err)
	}

	query := `
		INSERT INTO professional_applications (applicant_id, status, profile, document_urls, submitted_at)
		VALUES ($1, $2, $3::jsonb, $4::jsonb, NOW())
		RETURNING id, submitted_at
	`

	if err := s.db.QueryRowContext(ctx, query, a.ApplicantID, a.Status, profile, docs).Scan(&a.ID, &a.SubmittedAt); err != nil {
		return fmt.Errorf("creating application: %w", err)
	}

	return nil
}

func (s *Store) GetApplication(ctx context.Context, id uuid.UUID) (*application.Application, error) {
	query := `SELECT ` + selectApplicationColumns + ` FROM professional_applications WHERE id = $1`

	a, err := scanApplication(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, application.ErrNotFound
		}

		return nil, fmt.Errorf("getting application: %w", err)
	}

	return a, nil
}

func (s *Store) ListApplications(ctx context.Context, filter application.ListFilter) ([]*application.Application, error) {
	query := `SELECT ` + selectApplicationColumns + ` FROM professional_applications WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.ApplicantID != nil {
		query += fmt.Sprintf(" AND applicant_id = $%d", argIdx)

		args = append(args, *filter.ApplicantID)
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
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	defer rows.Close()

	var out []*application.Application

	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning application: %w", err)
		}

		out = append(out, a)
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

func (s *Store) ClaimApplication(ctx context.Context, id uuid.UUID, officialID string) (bool, error) {
	query := `
		UPDATE professional_applications SET assigned_official = $2
		WHERE id = $1 AND assigned_official IS NULL AND status = $3
	`

	ok, err := s.exec(ctx, query, id, officialID, application.StatusPending)
	if err != nil {
		return false, fmt.Errorf("claiming application: %w", err)
	}

	return ok, nil
}

func (s *Store) SetReviewed(ctx context.Context, id uuid.UUID, officialID string, status application.Status, comment string) (bool, error) {
	query := `
		UPDATE professional_applications
		SET status = $3, review_comment = NULLIF($4, ''), reviewed_by = $2, reviewed_at = NOW()
		WHERE id = $1 AND assigned_official = $2 AND status = $5
	`

	ok, err := s.exec(ctx, query, id, officialID, status, comment, application.StatusPending)
	if err != nil {
		return false, fmt.Errorf("reviewing application: %w", err)
	}

	return ok, nil
}

func (s *Store) CommitRoleGrant(ctx context.Context, id uuid.UUID, r ledger.Receipt) (bool, error) {
	query := `
		UPDATE professional_applications SET role_grant_receipt_hash = $2
		WHERE id = $1 AND role_grant_receipt_hash IS NULL AND status = $3
	`

	ok, err := s.exec(ctx, query, id, r.Hash, application.StatusApproved)
	if err != nil {
		return false, fmt.Errorf("committing role grant receipt: %w", err)
	}

	return ok, nil
}
