package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
	"github.com/MrJamesThe3rd/titledeed/internal/property"
)

func (s *Store) CreateProperty(_ context.Context, r *property.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.properties {
		if existing.ParcelIdentifier == r.ParcelIdentifier && existing.Status != property.StatusRejected {
			return apperr.Validation("parcel %s is already registered or under review", r.ParcelIdentifier)
		}
	}

	r.ID = uuid.New()
	r.SubmittedAt = time.Now().UTC()
	s.properties[r.ID] = cloneProperty(r)

	return nil
}

func (s *Store) GetProperty(_ context.Context, id uuid.UUID) (*property.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.properties[id]
	if !ok {
		return nil, property.ErrNotFound
	}

	return cloneProperty(r), nil
}

func (s *Store) FindApprovedByParcel(_ context.Context, parcelIdentifier string) (*property.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.properties {
		if r.ParcelIdentifier == parcelIdentifier && r.Status == property.StatusApproved {
			return cloneProperty(r), nil
		}
	}

	return nil, property.ErrNotFound
}

func (s *Store) ListProperties(_ context.Context, filter property.ListFilter) ([]*property.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*property.Record

	for _, r := range s.properties {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}

		if filter.OwnerID != nil && r.OwnerID != *filter.OwnerID {
			continue
		}

		if filter.AssignedOfficial != nil && r.AssignedOfficial != *filter.AssignedOfficial {
			continue
		}

		if filter.Unassigned && r.AssignedOfficial != "" {
			continue
		}

		out = append(out, cloneProperty(r))
	}

	slices.SortFunc(out, func(a, b *property.Record) int {
		return a.SubmittedAt.Compare(b.SubmittedAt)
	})

	return out, nil
}

func (s *Store) mutateProperty(id uuid.UUID, fn func(r *property.Record) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.properties[id]
	if !ok {
		return false, property.ErrNotFound
	}

	return fn(r), nil
}

func (s *Store) ClaimProperty(_ context.Context, id uuid.UUID, officialID string) (bool, error) {
	return s.mutateProperty(id, func(r *property.Record) bool {
		if r.AssignedOfficial != "" || r.Status != property.StatusPending {
			return false
		}

		r.AssignedOfficial = officialID

		return true
	})
}

func (s *Store) SetReviewed(_ context.Context, id uuid.UUID, officialID string, status property.Status, comment string) (bool, error) {
	return s.mutateProperty(id, func(r *property.Record) bool {
		if r.Status != property.StatusPending || r.AssignedOfficial != officialID {
			return false
		}

		r.Status = status
		r.ReviewComment = comment
		r.ReviewedBy = officialID
		r.ReviewedAt = new(time.Now().UTC())

		return true
	})
}

func (s *Store) CommitMint(_ context.Context, id uuid.UUID, receipt ledger.Receipt) (bool, error) {
	s.mu.Lock()
	failure := s.failCommits
	s.mu.Unlock()

	if failure != nil {
		return false, failure
	}

	return s.mutateProperty(id, func(r *property.Record) bool {
		if r.LedgerReceiptHash != "" || r.Status != property.StatusApproved {
			return false
		}

		r.LedgerReceiptHash = receipt.Hash
		r.TokenIdentifier = receipt.TokenIdentifier

		return true
	})
}
