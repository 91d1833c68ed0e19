package transaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
	"github.com/MrJamesThe3rd/titledeed/internal/stage"
)

// ledgerTarget adapts one ledger step of a transaction to bridge.Target.
type ledgerTarget struct {
	kind    ledger.Kind
	id      uuid.UUID
	repo    Repository
	prepare func(tx *Transaction) (ledger.Call, error)
	commit  func(ctx context.Context, r ledger.Receipt) (bool, error)
	stored  func(tx *Transaction) string
	message func(r ledger.Receipt) string
}

func (t *ledgerTarget) Kind() ledger.Kind { return t.kind }

func (t *ledgerTarget) RecordID() uuid.UUID { return t.id }

func (t *ledgerTarget) AuditMessage(r ledger.Receipt) string { return t.message(r) }

func (t *ledgerTarget) Recipients(ctx context.Context) []string {
	tx, err := t.repo.GetTransaction(ctx, t.id)
	if err != nil {
		return nil
	}

	return tx.everyone()
}

func (t *ledgerTarget) Prepare(ctx context.Context) (ledger.Call, *ledger.Receipt, error) {
	tx, err := t.repo.GetTransaction(ctx, t.id)
	if err != nil {
		return ledger.Call{}, nil, err
	}

	if hash := t.stored(tx); hash != "" {
		return ledger.Call{}, t.existing(tx, hash), nil
	}

	call, err := t.prepare(tx)
	if err != nil {
		return ledger.Call{}, nil, err
	}

	return call, nil, nil
}

func (t *ledgerTarget) Commit(ctx context.Context, r ledger.Receipt) (ledger.Receipt, bool, error) {
	written, err := t.commit(ctx, r)
	if err != nil {
		return ledger.Receipt{}, false, err
	}

	if written {
		return r, true, nil
	}

	tx, err := t.repo.GetTransaction(ctx, t.id)
	if err != nil {
		return ledger.Receipt{}, false, err
	}

	if hash := t.stored(tx); hash != "" {
		return *t.existing(tx, hash), false, nil
	}

	return ledger.Receipt{}, false, apperr.Concurrency("transaction %s no longer accepts a %s receipt (stage %s)", t.id, t.kind, tx.Stage)
}

func (t *ledgerTarget) existing(tx *Transaction, hash string) *ledger.Receipt {
	return &ledger.Receipt{
		Key:                 ledger.OperationKey(t.kind, t.id),
		Hash:                hash,
		TokenIdentifier:     tx.TokenIdentifier,
		LedgerTransactionID: tx.LedgerTransactionID,
	}
}

func (s *Service) initiateTarget(id uuid.UUID) bridge.Target {
	return &ledgerTarget{
		kind: ledger.KindInitiateTransaction,
		id:   id,
		repo: s.repo,
		prepare: func(tx *Transaction) (ledger.Call, error) {
			if tx.Stage != stage.Initiated {
				return ledger.Call{}, &stage.TransitionError{From: tx.Stage, To: stage.AwaitingSignatures, Reason: "transaction was not initiated"}
			}

			if tx.Seller.WalletAddress == "" || tx.Buyer.WalletAddress == "" || tx.TokenIdentifier == "" {
				return ledger.Call{}, apperr.Prerequisite("seller wallet, buyer wallet and token are required to initiate %s", tx.ID)
			}

			return ledger.Call{
				SellerAddress:   tx.Seller.WalletAddress,
				BuyerAddress:    tx.Buyer.WalletAddress,
				TokenIdentifier: tx.TokenIdentifier,
			}, nil
		},
		commit: func(ctx context.Context, r ledger.Receipt) (bool, error) {
			if r.LedgerTransactionID == "" {
				return false, apperr.Validation("initiation receipt %s carries no ledger transaction id", r.Hash)
			}

			return s.repo.CommitInitiation(ctx, id, r)
		},
		stored: func(tx *Transaction) string { return tx.InitiationReceiptHash },
		message: func(r ledger.Receipt) string {
			return fmt.Sprintf("Transaction initiated on ledger as %s", r.LedgerTransactionID)
		},
	}
}

func (s *Service) agentTarget(id uuid.UUID) bridge.Target {
	return &ledgerTarget{
		kind: ledger.KindAuthorizeTransferAgent,
		id:   id,
		repo: s.repo,
		prepare: func(tx *Transaction) (ledger.Call, error) {
			if tx.Stage != stage.UnderReview {
				return ledger.Call{}, &stage.TransitionError{From: tx.Stage, To: stage.Finalized, Reason: "transfer agent can only be authorized under review"}
			}

			if tx.AssignedOfficialWallet == "" || tx.TokenIdentifier == "" {
				return ledger.Call{}, apperr.Prerequisite("the reviewing official's wallet and the token are required to authorize %s", tx.ID)
			}

			return ledger.Call{AgentAddress: tx.AssignedOfficialWallet, TokenIdentifier: tx.TokenIdentifier}, nil
		},
		commit: func(ctx context.Context, r ledger.Receipt) (bool, error) {
			return s.repo.CommitAgentAuthorization(ctx, id, r)
		},
		stored: func(tx *Transaction) string { return tx.AgentAuthorizationReceiptHash },
		message: func(r ledger.Receipt) string {
			return "Seller authorized the reviewing official as transfer agent"
		},
	}
}

func (s *Service) finalizeTarget(id uuid.UUID) bridge.Target {
	return &ledgerTarget{
		kind: ledger.KindFinalizeTransfer,
		id:   id,
		repo: s.repo,
		prepare: func(tx *Transaction) (ledger.Call, error) {
			if tx.Stage != stage.UnderReview {
				return ledger.Call{}, &stage.TransitionError{From: tx.Stage, To: stage.Finalized, Reason: "transaction is not under review"}
			}

			if tx.LedgerTransactionID == "" {
				return ledger.Call{}, apperr.Prerequisite("transaction %s has no ledger transaction id", tx.ID)
			}

			if tx.AgentAuthorizationReceiptHash == "" {
				return ledger.Call{}, apperr.Prerequisite("the seller has not authorized the transfer of %s", tx.ID)
			}

			return ledger.Call{LedgerTransactionID: tx.LedgerTransactionID}, nil
		},
		commit: func(ctx context.Context, r ledger.Receipt) (bool, error) {
			return s.repo.CommitFinalization(ctx, id, r)
		},
		stored: func(tx *Transaction) string { return tx.LedgerReceiptHash },
		message: func(r ledger.Receipt) string {
			return "Final approval recorded on ledger"
		},
	}
}

// RegisterResolvers lets the reconciler rebuild transaction ledger steps.
func (s *Service) RegisterResolvers(b *bridge.Bridge) {
	b.Register(ledger.KindInitiateTransaction, func(_ context.Context, id uuid.UUID) (bridge.Target, error) {
		return s.initiateTarget(id), nil
	})
	b.Register(ledger.KindAuthorizeTransferAgent, func(_ context.Context, id uuid.UUID) (bridge.Target, error) {
		return s.agentTarget(id), nil
	})
	b.Register(ledger.KindFinalizeTransfer, func(_ context.Context, id uuid.UUID) (bridge.Target, error) {
		return s.finalizeTarget(id), nil
	})
}
