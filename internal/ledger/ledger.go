// Package ledger is the contract with the external append-only ledger. Every
// call carries an operation key; the ledger treats a repeated key as the same
// operation and can be asked for the receipt of a key later.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindRegisterAsset          Kind = "register_asset"
	KindGrantRole              Kind = "grant_role"
	KindInitiateTransaction    Kind = "initiate_transaction"
	KindAuthorizeTransferAgent Kind = "authorize_transfer_agent"
	KindFinalizeTransfer       Kind = "finalize_transfer"
)

// RoleIntermediary is the role granted to approved professionals.
const RoleIntermediary = "intermediary"

var (
	ErrDeclined = errors.New("ledger declined the call")
	ErrReverted = errors.New("ledger reverted the call")
	ErrTimeout  = errors.New("ledger call timed out")
)

// OperationKey identifies one irreversible action on one record.
func OperationKey(kind Kind, recordID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", kind, recordID)
}

// Call is a prepared ledger invocation. Only the fields of its Kind are set.
type Call struct {
	Kind Kind
	Key  string

	OwnerAddress     string
	ParcelIdentifier string

	RoleKind string
	Address  string

	SellerAddress   string
	BuyerAddress    string
	TokenIdentifier string

	AgentAddress string

	LedgerTransactionID string
}

type Receipt struct {
	Key                 string    `json:"key"`
	Hash                string    `json:"hash"`
	TokenIdentifier     string    `json:"token_id,omitempty"`
	LedgerTransactionID string    `json:"transaction_id,omitempty"`
	ConfirmedAt         time.Time `json:"confirmed_at"`
}

//go:generate mockgen -source=ledger.go -destination=client_mock.go -package=ledger
type Client interface {
	RegisterAsset(ctx context.Context, key, ownerAddress, parcelIdentifier string) (Receipt, error)
	GrantRole(ctx context.Context, key, roleKind, address string) (Receipt, error)
	InitiateTransaction(ctx context.Context, key, sellerAddress, buyerAddress, tokenIdentifier string) (Receipt, error)
	AuthorizeTransferAgent(ctx context.Context, key, agentAddress, tokenIdentifier string) (Receipt, error)
	FinalizeTransfer(ctx context.Context, key, ledgerTransactionID string) (Receipt, error)
	// LookupReceipt returns the receipt recorded for key, or nil when the
	// ledger has never confirmed it.
	LookupReceipt(ctx context.Context, key string) (*Receipt, error)
}

// Submit dispatches call to the matching client method.
func Submit(ctx context.Context, c Client, call Call) (Receipt, error) {
	switch call.Kind {
	case KindRegisterAsset:
		return c.RegisterAsset(ctx, call.Key, call.OwnerAddress, call.ParcelIdentifier)
	case KindGrantRole:
		return c.GrantRole(ctx, call.Key, call.RoleKind, call.Address)
	case KindInitiateTransaction:
		return c.InitiateTransaction(ctx, call.Key, call.SellerAddress, call.BuyerAddress, call.TokenIdentifier)
	case KindAuthorizeTransferAgent:
		return c.AuthorizeTransferAgent(ctx, call.Key, call.AgentAddress, call.TokenIdentifier)
	case KindFinalizeTransfer:
		return c.FinalizeTransfer(ctx, call.Key, call.LedgerTransactionID)
	}

	return Receipt{}, fmt.Errorf("unknown ledger call kind %q", call.Kind)
}
