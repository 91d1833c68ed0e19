package transaction

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/assignment"
	"github.com/MrJamesThe3rd/titledeed/internal/event"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
	"github.com/MrJamesThe3rd/titledeed/internal/stage"
)

// Claim assigns a verified transaction to an official and puts it under
// review. Another official's claim fails with assignment.ErrAlreadyClaimed.
func (s *Service) Claim(ctx context.Context, id uuid.UUID, official actor.Actor) error {
	if official.Role != actor.RoleOfficial {
		return apperr.Forbidden("only officials can claim transactions")
	}

	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	if tx.AssignedOfficial != "" {
		return assignment.Outcome(tx.AssignedOfficial, official.ID, id)
	}

	ev := tx.Evidence()
	ev.AssignedOfficial = official.ID

	if _, err := stage.Transition(tx.Stage, stage.UnderReview, official.Role, ev); err != nil {
		return err
	}

	written, err := s.repo.ClaimTransaction(ctx, id, official.ID, official.WalletAddress)
	if err != nil {
		return fmt.Errorf("claim transaction: %w", err)
	}

	if !written {
		current, err := s.repo.GetTransaction(ctx, id)
		if err != nil {
			return err
		}

		if current.AssignedOfficial != "" {
			return assignment.Outcome(current.AssignedOfficial, official.ID, id)
		}

		return apperr.Concurrency("transaction %s left the pool (now %s)", id, current.Stage)
	}

	s.logger.Info("transaction claimed", "id", id, "official", official.ID)
	s.notify(event.TypeStageChanged, id, tx.everyone(), "Transaction moved to "+stage.UnderReview.Label())

	return nil
}

// Initiate records the transaction on the ledger and opens it for signatures.
func (s *Service) Initiate(ctx context.Context, id uuid.UUID, a actor.Actor) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.checkIntermediary(a); err != nil {
		return nil, err
	}

	if _, err := s.bridge.Execute(ctx, s.initiateTarget(id), a.ID); err != nil {
		return nil, err
	}

	current, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.Stage != current.Stage {
		s.notify(event.TypeStageChanged, id, current.signers(), "Transaction moved to "+current.Stage.Label())
	}

	return current, nil
}

// AuthorizeTransferAgent lets the seller authorize the reviewing official's
// wallet to move the token at finalization.
func (s *Service) AuthorizeTransferAgent(ctx context.Context, id uuid.UUID, a actor.Actor) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.Role != actor.RoleSeller || tx.Seller.PartyID != a.ID {
		return nil, apperr.Forbidden("only the seller can authorize the transfer agent")
	}

	if _, err := s.bridge.Execute(ctx, s.agentTarget(id), a.ID); err != nil {
		return nil, err
	}

	if tx.AssignedOfficial != "" {
		s.notify(event.TypeLedgerCommitted, id, []string{tx.AssignedOfficial}, "The seller authorized the transfer")
	}

	return s.repo.GetTransaction(ctx, id)
}

// Review is the official's terminal decision. Approval finalizes the transfer
// on the ledger; rejection needs a comment.
func (s *Service) Review(ctx context.Context, id uuid.UUID, official actor.Actor, decision Decision, comment string) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.checkOfficial(official); err != nil {
		return nil, err
	}

	if decision == DecisionReject {
		ev := tx.Evidence()
		ev.Comment = comment

		if _, err := stage.Transition(tx.Stage, stage.Rejected, official.Role, ev); err != nil {
			return nil, err
		}

		if err := s.refuseIfTransferred(ctx, tx, official); err != nil {
			return nil, err
		}

		return s.request(ctx, tx, stage.Rejected, official.Role, ev, StageChange{ActorID: official.ID, Comment: strings.TrimSpace(comment)})
	}

	if tx.Stage == stage.Rejected {
		return nil, &stage.TransitionError{From: tx.Stage, To: stage.Finalized, Reason: "stage is terminal"}
	}

	if _, err := s.bridge.Execute(ctx, s.finalizeTarget(id), official.ID); err != nil {
		return nil, err
	}

	current, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.Stage != current.Stage {
		s.logger.Info("transaction finalized", "id", id, "official", official.ID, "receipt", current.LedgerReceiptHash)
		s.notify(event.TypeStageChanged, id, current.everyone(), "Transaction finalized on the ledger")
	}

	return current, nil
}

// refuseIfTransferred fails a rejection when the final transfer already landed
// on the ledger, and commits that transfer instead. A transfer still in flight
// is committed over the rejection by CommitFinalization.
func (s *Service) refuseIfTransferred(ctx context.Context, tx *Transaction, official actor.Actor) error {
	if tx.Stage != stage.UnderReview || tx.AgentAuthorizationReceiptHash == "" {
		return nil
	}

	found, err := s.bridge.Confirmed(ctx, ledger.OperationKey(ledger.KindFinalizeTransfer, tx.ID))
	if err != nil {
		return err
	}

	if found == nil {
		return nil
	}

	if _, err := s.bridge.Execute(ctx, s.finalizeTarget(tx.ID), official.ID); err != nil {
		return err
	}

	s.logger.Warn("rejection refused, transfer already final on the ledger", "id", tx.ID, "official", official.ID)
	s.notify(event.TypeStageChanged, tx.ID, tx.everyone(), "Transaction finalized on the ledger")

	return apperr.Concurrency("transaction %s was finalized on the ledger and can no longer be rejected", tx.ID)
}
