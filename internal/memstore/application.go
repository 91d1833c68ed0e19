package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/application"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

// ApplicationStore adapts Store to application.Repository, whose SetReviewed
// differs from the property one.
type ApplicationStore struct {
	*Store
}

func (s *Store) Applications() ApplicationStore {
	return ApplicationStore{Store: s}
}

func (s ApplicationStore) CreateApplication(_ context.Context, a *application.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = uuid.New()
	a.SubmittedAt = time.Now().UTC()
	s.applications[a.ID] = cloneApplication(a)

	return nil
}

func (s ApplicationStore) GetApplication(_ context.Context, id uuid.UUID) (*application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.applications[id]
	if !ok {
		return nil, application.ErrNotFound
	}

	return cloneApplication(a), nil
}

func (s ApplicationStore) ListApplications(_ context.Context, filter application.ListFilter) ([]*application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*application.Application

	for _, a := range s.applications {
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}

		if filter.ApplicantID != nil && a.ApplicantID != *filter.ApplicantID {
			continue
		}

		if filter.AssignedOfficial != nil && a.AssignedOfficial != *filter.AssignedOfficial {
			continue
		}

		if filter.Unassigned && a.AssignedOfficial != "" {
			continue
		}

		out = append(out, cloneApplication(a))
	}

	slices.SortFunc(out, func(x, y *application.Application) int {
		return x.SubmittedAt.Compare(y.SubmittedAt)
	})

	return out, nil
}

func (s ApplicationStore) mutate(id uuid.UUID, fn func(a *application.Application) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.applications[id]
	if !ok {
		return false, application.ErrNotFound
	}

	return fn(a), nil
}

func (s ApplicationStore) ClaimApplication(_ context.Context, id uuid.UUID, officialID string) (bool, error) {
	return s.mutate(id, func(a *application.Application) bool {
		if a.AssignedOfficial != "" || a.Status != application.StatusPending {
			return false
		}

		a.AssignedOfficial = officialID

		return true
	})
}

func (s ApplicationStore) SetReviewed(_ context.Context, id uuid.UUID, officialID string, status application.Status, comment string) (bool, error) {
	return s.mutate(id, func(a *application.Application) bool {
		if a.Status != application.StatusPending || a.AssignedOfficial != officialID {
			return false
		}

		a.Status = status
		a.ReviewComment = comment
		a.ReviewedBy = officialID
		a.ReviewedAt = new(time.Now().UTC())

		return true
	})
}

func (s ApplicationStore) CommitRoleGrant(_ context.Context, id uuid.UUID, r ledger.Receipt) (bool, error) {
	s.mu.Lock()
	failure := s.failCommits
	s.mu.Unlock()

	if failure != nil {
		return false, failure
	}

	return s.mutate(id, func(a *application.Application) bool {
		if a.RoleGrantReceiptHash != "" || a.Status != application.StatusApproved {
			return false
		}

		a.RoleGrantReceiptHash = r.Hash

		return true
	})
}
