// Package memstore keeps every record collection in memory. Each conditional
// write checks its precondition and applies the change under one lock, which
// gives the same single-winner behaviour as the PostgreSQL stores.
package memstore

import (
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/application"
	"github.com/MrJamesThe3rd/titledeed/internal/audit"
	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	"github.com/MrJamesThe3rd/titledeed/internal/property"
	"github.com/MrJamesThe3rd/titledeed/internal/transaction"
)

type Store struct {
	mu sync.Mutex

	transactions    map[uuid.UUID]*transaction.Transaction
	properties      map[uuid.UUID]*property.Record
	applications    map[uuid.UUID]*application.Application
	audit           []*audit.Entry
	auditKeys       map[string]bool
	reconciliations map[uuid.UUID]*bridge.Reconciliation

	failCommits error
}

func New() *Store {
	return &Store{
		transactions:    make(map[uuid.UUID]*transaction.Transaction),
		properties:      make(map[uuid.UUID]*property.Record),
		applications:    make(map[uuid.UUID]*application.Application),
		auditKeys:       make(map[string]bool),
		reconciliations: make(map[uuid.UUID]*bridge.Reconciliation),
	}
}

// FailCommits makes receipt commits return err until called with nil.
func (s *Store) FailCommits(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failCommits = err
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}

	return new(*b)
}

func cloneParty(p transaction.Party) transaction.Party {
	p.Accepted = cloneBool(p.Accepted)
	p.DocumentsVerified = cloneBool(p.DocumentsVerified)

	return p
}

func cloneTransaction(t *transaction.Transaction) *transaction.Transaction {
	c := *t
	c.Buyer = cloneParty(t.Buyer)
	c.Seller = cloneParty(t.Seller)
	c.Intermediary = cloneParty(t.Intermediary)
	c.SharedDocuments = append([]transaction.Document(nil), t.SharedDocuments...)

	return &c
}

func cloneProperty(r *property.Record) *property.Record {
	c := *r
	c.DocumentURLs = append([]string(nil), r.DocumentURLs...)

	return &c
}

func cloneApplication(a *application.Application) *application.Application {
	c := *a
	c.DocumentURLs = append([]string(nil), a.DocumentURLs...)

	return &c
}
