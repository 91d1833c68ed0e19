package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

type grantTarget struct {
	id   uuid.UUID
	repo Repository
}

func (s *Service) grantTarget(id uuid.UUID) bridge.Target {
	return &grantTarget{id: id, repo: s.repo}
}

func (t *grantTarget) Kind() ledger.Kind { return ledger.KindGrantRole }

func (t *grantTarget) RecordID() uuid.UUID { return t.id }

func (t *grantTarget) AuditMessage(ledger.Receipt) string {
	return "Intermediary role granted on ledger"
}

func (t *grantTarget) Recipients(ctx context.Context) []string {
	a, err := t.repo.GetApplication(ctx, t.id)
	if err != nil {
		return nil
	}

	return []string{a.ApplicantID}
}

func (t *grantTarget) Prepare(ctx context.Context) (ledger.Call, *ledger.Receipt, error) {
	a, err := t.repo.GetApplication(ctx, t.id)
	if err != nil {
		return ledger.Call{}, nil, err
	}

	if a.RoleGrantReceiptHash != "" {
		return ledger.Call{}, t.existing(a), nil
	}

	if a.Status != StatusApproved {
		return ledger.Call{}, nil, apperr.Validation("application %s is %s", t.id, a.Status)
	}

	if a.Profile.WalletAddress == "" {
		return ledger.Call{}, nil, apperr.Prerequisite("applicant %s has no wallet address", a.ApplicantID)
	}

	return ledger.Call{RoleKind: ledger.RoleIntermediary, Address: a.Profile.WalletAddress}, nil, nil
}

func (t *grantTarget) Commit(ctx context.Context, r ledger.Receipt) (ledger.Receipt, bool, error) {
	written, err := t.repo.CommitRoleGrant(ctx, t.id, r)
	if err != nil {
		return ledger.Receipt{}, false, err
	}

	if written {
		return r, true, nil
	}

	a, err := t.repo.GetApplication(ctx, t.id)
	if err != nil {
		return ledger.Receipt{}, false, err
	}

	if a.RoleGrantReceiptHash != "" {
		return *t.existing(a), false, nil
	}

	return ledger.Receipt{}, false, apperr.Concurrency("application %s cannot take a role grant receipt (status %s)", t.id, a.Status)
}

func (t *grantTarget) existing(a *Application) *ledger.Receipt {
	return &ledger.Receipt{Key: ledger.OperationKey(ledger.KindGrantRole, a.ID), Hash: a.RoleGrantReceiptHash}
}

func (s *Service) RegisterResolvers(b *bridge.Bridge) {
	b.Register(ledger.KindGrantRole, func(_ context.Context, id uuid.UUID) (bridge.Target, error) {
		return s.grantTarget(id), nil
	})
}
