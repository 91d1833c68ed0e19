package property

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

type mintTarget struct {
	id   uuid.UUID
	repo Repository
}

func (s *Service) mintTarget(id uuid.UUID) bridge.Target {
	return &mintTarget{id: id, repo: s.repo}
}

func (t *mintTarget) Kind() ledger.Kind { return ledger.KindRegisterAsset }

func (t *mintTarget) RecordID() uuid.UUID { return t.id }

func (t *mintTarget) AuditMessage(r ledger.Receipt) string {
	return fmt.Sprintf("Property minted as token %s", r.TokenIdentifier)
}

func (t *mintTarget) Recipients(ctx context.Context) []string {
	r, err := t.repo.GetProperty(ctx, t.id)
	if err != nil {
		return nil
	}

	return []string{r.OwnerID}
}

func (t *mintTarget) Prepare(ctx context.Context) (ledger.Call, *ledger.Receipt, error) {
	r, err := t.repo.GetProperty(ctx, t.id)
	if err != nil {
		return ledger.Call{}, nil, err
	}

	if r.Minted() {
		return ledger.Call{}, existing(r), nil
	}

	if r.Status != StatusApproved {
		return ledger.Call{}, nil, apperr.Validation("property %s is %s, only approved properties are minted", t.id, r.Status)
	}

	if r.OwnerWalletAddress == "" || r.ParcelIdentifier == "" {
		return ledger.Call{}, nil, apperr.Prerequisite("owner wallet and parcel identifier are required to mint %s", t.id)
	}

	return ledger.Call{OwnerAddress: r.OwnerWalletAddress, ParcelIdentifier: r.ParcelIdentifier}, nil, nil
}

func (t *mintTarget) Commit(ctx context.Context, receipt ledger.Receipt) (ledger.Receipt, bool, error) {
	if receipt.TokenIdentifier == "" {
		return ledger.Receipt{}, false, apperr.Validation("mint receipt %s carries no token id", receipt.Hash)
	}

	written, err := t.repo.CommitMint(ctx, t.id, receipt)
	if err != nil {
		return ledger.Receipt{}, false, err
	}

	if written {
		return receipt, true, nil
	}

	r, err := t.repo.GetProperty(ctx, t.id)
	if err != nil {
		return ledger.Receipt{}, false, err
	}

	if r.Minted() {
		return *existing(r), false, nil
	}

	return ledger.Receipt{}, false, apperr.Concurrency("property %s cannot take a mint receipt (status %s)", t.id, r.Status)
}

func existing(r *Record) *ledger.Receipt {
	return &ledger.Receipt{
		Key:             ledger.OperationKey(ledger.KindRegisterAsset, r.ID),
		Hash:            r.LedgerReceiptHash,
		TokenIdentifier: r.TokenIdentifier,
	}
}

func (s *Service) RegisterResolvers(b *bridge.Bridge) {
	b.Register(ledger.KindRegisterAsset, func(_ context.Context, id uuid.UUID) (bridge.Target, error) {
		return s.mintTarget(id), nil
	})
}
