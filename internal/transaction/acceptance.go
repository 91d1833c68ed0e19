package transaction

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/event"
	"github.com/MrJamesThe3rd/titledeed/internal/stage"
)

// Accept records the buyer's or seller's signature. When both have signed the
// transaction moves to docs_shared; if both sign at once exactly one stage
// write succeeds. Accepting twice is a no-op.
func (s *Service) Accept(ctx context.Context, id uuid.UUID, a actor.Actor) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	role, err := tx.SigningRole(a)
	if err != nil {
		return nil, err
	}

	if p, _ := tx.Party(role); p.HasAccepted() {
		return tx, nil
	}

	if tx.Stage != stage.AwaitingSignatures {
		return nil, &stage.TransitionError{From: tx.Stage, To: stage.DocsShared, Reason: "transaction is not awaiting signatures"}
	}

	written, counterpart, err := s.repo.SetAccepted(ctx, id, role)
	if err != nil {
		return nil, fmt.Errorf("set %s accepted: %w", role, err)
	}

	if !written {
		return s.settleAccept(ctx, id, role)
	}

	s.notify(event.TypePartyAccepted, id, []string{tx.Intermediary.PartyID}, fmt.Sprintf("The %s accepted the transaction", role))

	if counterpart {
		tx.Stage = stage.AwaitingSignatures
		if _, err := s.advance(ctx, tx, stage.DocsShared, StageChange{ActorID: a.ID}); err != nil {
			return nil, err
		}
	}

	return s.repo.GetTransaction(ctx, id)
}

// settleAccept explains a lost accept write from the current record.
func (s *Service) settleAccept(ctx context.Context, id uuid.UUID, role actor.Role) (*Transaction, error) {
	current, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if p, _ := current.Party(role); p.HasAccepted() {
		return current, nil
	}

	return nil, apperr.Concurrency("transaction %s left awaiting signatures (now %s)", id, current.Stage)
}

// Decline lets a signing party refuse the transaction before accepting it.
// The transaction is rejected.
func (s *Service) Decline(ctx context.Context, id uuid.UUID, a actor.Actor, comment string) (*Transaction, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, apperr.Validation("a reason is required to decline")
	}

	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	role, err := tx.SigningRole(a)
	if err != nil {
		return nil, err
	}

	p, _ := tx.Party(role)
	ev := tx.Evidence()
	ev.Comment = comment
	ev.DeclinerAccepted = p.HasAccepted()

	return s.request(ctx, tx, stage.Rejected, role, ev, StageChange{ActorID: a.ID, Role: role, Comment: comment})
}
