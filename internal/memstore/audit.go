package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/audit"
)

func (s *Store) AppendEntry(_ context.Context, e *audit.Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.auditKeys[e.OperationKey] {
		return false, nil
	}

	e.ID = uuid.New()
	e.Timestamp = time.Now().UTC()

	c := *e
	s.audit = append(s.audit, &c)
	s.auditKeys[e.OperationKey] = true

	return true, nil
}

func (s *Store) ListEntries(_ context.Context, filter audit.ListFilter) ([]*audit.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*audit.Entry

	for _, e := range s.audit {
		if filter.RelatedRecordID != nil && e.RelatedRecordID != *filter.RelatedRecordID {
			continue
		}

		if filter.OperationKey != nil && e.OperationKey != *filter.OperationKey {
			continue
		}

		c := *e
		out = append(out, &c)

		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}

	return out, nil
}
