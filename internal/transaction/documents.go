package transaction

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/event"
	"github.com/MrJamesThe3rd/titledeed/internal/stage"
)

type DocumentInput struct {
	Name string
	URL  string
}

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

func ParseDecision(s string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(s))) {
	case DecisionAccept, "approve", "approved", "accepted":
		return DecisionAccept, nil
	case DecisionReject, "rejected":
		return DecisionReject, nil
	}

	return "", apperr.Validation("unknown decision %q", s)
}

// ShareDocuments appends document references. The list never shrinks.
func (s *Service) ShareDocuments(ctx context.Context, id uuid.UUID, a actor.Actor, inputs []DocumentInput) (*Transaction, error) {
	if len(inputs) == 0 {
		return nil, apperr.Validation("at least one document is required")
	}

	now := time.Now().UTC()
	docs := make([]Document, 0, len(inputs))

	for _, in := range inputs {
		name, ref := strings.TrimSpace(in.Name), strings.TrimSpace(in.URL)
		if name == "" || ref == "" {
			return nil, apperr.Validation("documents need a name and a url")
		}

		if _, err := url.ParseRequestURI(ref); err != nil {
			return nil, apperr.Validation("document %q has an invalid url", name)
		}

		docs = append(docs, Document{Name: name, URL: ref, UploadedBy: a.ID, UploadedAt: now})
	}

	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.checkIntermediary(a); err != nil {
		return nil, err
	}

	revision := tx.Stage == stage.AwaitingVerification && tx.OutstandingRejection()
	if tx.Stage != stage.DocsShared && !revision {
		return nil, &stage.TransitionError{From: tx.Stage, To: stage.AwaitingVerification, Reason: "documents can only be shared in docs shared or to answer a rejection"}
	}

	written, err := s.repo.AppendDocuments(ctx, id, a.ID, docs)
	if err != nil {
		return nil, fmt.Errorf("append documents: %w", err)
	}

	if !written {
		return nil, apperr.Concurrency("transaction %s no longer accepts documents", id)
	}

	msg := "New documents were shared for your transaction"
	if revision {
		msg = "Revised documents were shared in response to a rejection"
	}

	s.notify(event.TypeDocumentsShared, id, tx.signers(), msg)

	return s.repo.GetTransaction(ctx, id)
}

// PublishForVerification hands the shared documents to buyer and seller.
func (s *Service) PublishForVerification(ctx context.Context, id uuid.UUID, a actor.Actor) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.checkIntermediary(a); err != nil {
		return nil, err
	}

	return s.request(ctx, tx, stage.AwaitingVerification, a.Role, tx.Evidence(), StageChange{ActorID: a.ID})
}

// Verify records a party's verdict on the shared documents. A rejection needs
// a comment and leaves the stage unchanged; when both parties have accepted
// the transaction becomes verified.
func (s *Service) Verify(ctx context.Context, id uuid.UUID, a actor.Actor, decision Decision, comment string) (*Transaction, error) {
	accepted := decision == DecisionAccept
	if !accepted && strings.TrimSpace(comment) == "" {
		return nil, apperr.Validation("a comment is required to reject documents")
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
	if p.HasVerified() {
		if accepted {
			return tx, nil
		}

		return nil, apperr.Validation("documents were already accepted by the %s", role)
	}

	if tx.Stage != stage.AwaitingVerification {
		return nil, &stage.TransitionError{From: tx.Stage, To: stage.Verified, Reason: "documents are not awaiting verification"}
	}

	if accepted {
		comment = ""
	}

	written, counterpart, err := s.repo.SetVerification(ctx, id, role, accepted, strings.TrimSpace(comment))
	if err != nil {
		return nil, fmt.Errorf("set %s verification: %w", role, err)
	}

	if !written {
		current, err := s.repo.GetTransaction(ctx, id)
		if err != nil {
			return nil, err
		}

		if cp, _ := current.Party(role); cp.HasVerified() && accepted {
			return current, nil
		}

		return nil, apperr.Concurrency("verification of transaction %s changed concurrently (now %s)", id, current.Stage)
	}

	msg := fmt.Sprintf("The %s accepted the documents", role)
	if !accepted {
		msg = fmt.Sprintf("The %s rejected the documents: %s", role, comment)
	}

	s.notify(event.TypeDocumentsVerified, id, []string{tx.Intermediary.PartyID}, msg)

	if accepted && counterpart {
		tx.Stage = stage.AwaitingVerification
		if _, err := s.advance(ctx, tx, stage.Verified, StageChange{ActorID: a.ID}); err != nil {
			return nil, err
		}
	}

	return s.repo.GetTransaction(ctx, id)
}

// Withdraw lets the intermediary abandon a transaction during verification.
func (s *Service) Withdraw(ctx context.Context, id uuid.UUID, a actor.Actor, comment string) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.checkIntermediary(a); err != nil {
		return nil, err
	}

	ev := tx.Evidence()
	ev.Comment = comment

	return s.request(ctx, tx, stage.Rejected, a.Role, ev, StageChange{ActorID: a.ID, Comment: strings.TrimSpace(comment)})
}
