package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
)

// Repository is append-only: there is no update or delete.
type Repository interface {
	// AppendEntry stores e unless an entry with the same operation key exists.
	// It reports whether a new row was written.
	AppendEntry(ctx context.Context, e *Entry) (bool, error)
	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)
}

type ListFilter struct {
	RelatedRecordID *uuid.UUID
	OperationKey    *string
	Limit           int
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Append(ctx context.Context, e *Entry) (bool, error) {
	if strings.TrimSpace(e.OperationKey) == "" {
		return false, apperr.Validation("audit entry needs an operation key")
	}

	if strings.TrimSpace(e.Message) == "" {
		return false, apperr.Validation("audit entry needs a message")
	}

	written, err := s.repo.AppendEntry(ctx, e)
	if err != nil {
		return false, fmt.Errorf("append audit entry %s: %w", e.OperationKey, err)
	}

	return written, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}

	return s.repo.ListEntries(ctx, filter)
}

// ForRecord returns the trail of a single record, oldest first.
func (s *Service) ForRecord(ctx context.Context, id uuid.UUID) ([]*Entry, error) {
	return s.List(ctx, ListFilter{RelatedRecordID: &id})
}
