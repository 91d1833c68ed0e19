package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
	"github.com/MrJamesThe3rd/titledeed/internal/stage"
	"github.com/MrJamesThe3rd/titledeed/internal/transaction"
)

func (s *Store) CreateTransaction(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.ID = uuid.New()
	tx.CreatedAt = time.Now().UTC()
	s.transactions[tx.ID] = cloneTransaction(tx)

	return nil
}

func (s *Store) GetTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok {
		return nil, transaction.ErrNotFound
	}

	return cloneTransaction(tx), nil
}

func (s *Store) ListTransactions(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*transaction.Transaction

	for _, tx := range s.transactions {
		if filter.Stage != nil && tx.Stage != *filter.Stage {
			continue
		}

		if filter.PartyID != nil && !tx.Involves(*filter.PartyID) {
			continue
		}

		if filter.AssignedOfficial != nil && tx.AssignedOfficial != *filter.AssignedOfficial {
			continue
		}

		if filter.Unassigned && tx.AssignedOfficial != "" {
			continue
		}

		out = append(out, cloneTransaction(tx))
	}

	slices.SortFunc(out, func(a, b *transaction.Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return out, nil
}

// mutate applies fn to the stored transaction under the lock. fn reports
// whether its precondition held.
func (s *Store) mutate(id uuid.UUID, fn func(tx *transaction.Transaction) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok {
		return false, transaction.ErrNotFound
	}

	if !fn(tx) {
		return false, nil
	}

	tx.UpdatedAt = new(time.Now().UTC())

	return true, nil
}

func party(tx *transaction.Transaction, role actor.Role) *transaction.Party {
	switch role {
	case actor.RoleBuyer:
		return &tx.Buyer
	case actor.RoleSeller:
		return &tx.Seller
	}

	return nil
}

func (s *Store) SetAccepted(_ context.Context, id uuid.UUID, role actor.Role) (bool, bool, error) {
	var counterpart bool

	written, err := s.mutate(id, func(tx *transaction.Transaction) bool {
		p := party(tx, role)
		if p == nil || tx.Stage != stage.AwaitingSignatures || p.HasAccepted() {
			return false
		}

		p.Accepted = new(true)
		counterpart = party(tx, transaction.Counterpart(role)).HasAccepted()

		return true
	})

	return written, counterpart, err
}

func (s *Store) SetVerification(_ context.Context, id uuid.UUID, role actor.Role, accepted bool, comment string) (bool, bool, error) {
	var counterpart bool

	written, err := s.mutate(id, func(tx *transaction.Transaction) bool {
		p := party(tx, role)
		if p == nil || tx.Stage != stage.AwaitingVerification || p.HasVerified() {
			return false
		}

		p.DocumentsVerified = new(accepted)
		p.RejectionComment = comment
		counterpart = party(tx, transaction.Counterpart(role)).HasVerified()

		return true
	})

	return written, counterpart, err
}

func (s *Store) AppendDocuments(_ context.Context, id uuid.UUID, intermediaryID string, docs []transaction.Document) (bool, error) {
	return s.mutate(id, func(tx *transaction.Transaction) bool {
		if tx.Intermediary.PartyID != intermediaryID {
			return false
		}

		switch {
		case tx.Stage == stage.DocsShared:
		case tx.Stage == stage.AwaitingVerification && tx.OutstandingRejection():
			for _, p := range []*transaction.Party{&tx.Buyer, &tx.Seller} {
				if p.HasRejected() {
					p.DocumentsVerified = nil
				}
			}
		default:
			return false
		}

		tx.SharedDocuments = append(tx.SharedDocuments, docs...)

		return true
	})
}

func (s *Store) AdvanceStage(_ context.Context, id uuid.UUID, from, to stage.Stage, guard stage.Guard, change transaction.StageChange) (bool, error) {
	return s.mutate(id, func(tx *transaction.Transaction) bool {
		if tx.Stage != from {
			return false
		}

		ev := tx.Evidence()
		ev.Comment = change.Comment

		if p := party(tx, change.Role); p != nil {
			ev.DeclinerAccepted = p.HasAccepted()
		}

		if !guard.Satisfied(ev) {
			return false
		}

		tx.Stage = to

		if to == stage.Rejected {
			tx.ReviewComment = change.Comment
			tx.ReviewedBy = change.ActorID

			if p := party(tx, change.Role); p != nil {
				p.Accepted = new(false)
				p.RejectionComment = change.Comment
			}
		}

		return true
	})
}

func (s *Store) ClaimTransaction(_ context.Context, id uuid.UUID, officialID, walletAddress string) (bool, error) {
	return s.mutate(id, func(tx *transaction.Transaction) bool {
		if tx.AssignedOfficial != "" || tx.Stage != stage.Verified {
			return false
		}

		tx.AssignedOfficial = officialID
		tx.AssignedOfficialWallet = walletAddress
		tx.Stage = stage.UnderReview

		return true
	})
}

func (s *Store) commitTransaction(id uuid.UUID, fn func(tx *transaction.Transaction) bool) (bool, error) {
	s.mu.Lock()
	failure := s.failCommits
	s.mu.Unlock()

	if failure != nil {
		return false, failure
	}

	return s.mutate(id, fn)
}

func (s *Store) CommitInitiation(_ context.Context, id uuid.UUID, r ledger.Receipt) (bool, error) {
	return s.commitTransaction(id, func(tx *transaction.Transaction) bool {
		if tx.InitiationReceiptHash != "" || tx.Stage != stage.Initiated {
			return false
		}

		tx.InitiationReceiptHash = r.Hash
		tx.LedgerTransactionID = r.LedgerTransactionID
		tx.Stage = stage.AwaitingSignatures

		return true
	})
}

func (s *Store) CommitAgentAuthorization(_ context.Context, id uuid.UUID, r ledger.Receipt) (bool, error) {
	return s.commitTransaction(id, func(tx *transaction.Transaction) bool {
		if tx.AgentAuthorizationReceiptHash != "" || tx.Stage != stage.UnderReview {
			return false
		}

		tx.AgentAuthorizationReceiptHash = r.Hash

		return true
	})
}

func (s *Store) CommitFinalization(_ context.Context, id uuid.UUID, r ledger.Receipt) (bool, error) {
	return s.commitTransaction(id, func(tx *transaction.Transaction) bool {
		if tx.LedgerReceiptHash != "" || !transaction.AcceptsFinalization(tx) {
			return false
		}

		tx.LedgerReceiptHash = r.Hash
		tx.Stage = stage.Finalized
		tx.FinalizedAt = new(time.Now().UTC())

		return true
	})
}
