package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/stage"
	"github.com/MrJamesThe3rd/titledeed/internal/transaction"
)

type partyResponse struct {
	PartyID           string `json:"party_id"`
	DisplayName       string `json:"display_name,omitempty"`
	ContactInfo       string `json:"contact_info,omitempty"`
	WalletAddress     string `json:"wallet_address,omitempty"`
	Accepted          *bool  `json:"accepted"`
	DocumentsVerified *bool  `json:"documents_verified"`
	RejectionComment  string `json:"rejection_comment,omitempty"`
}

type transactionResponse struct {
	ID                            uuid.UUID              `json:"id"`
	Stage                         stage.Stage            `json:"stage"`
	StageLabel                    string                 `json:"stage_label"`
	ParcelIdentifier              string                 `json:"parcel_identifier"`
	Location                      string                 `json:"location"`
	Buyer                         partyResponse          `json:"buyer"`
	Seller                        partyResponse          `json:"seller"`
	Intermediary                  partyResponse          `json:"intermediary"`
	AssignedOfficial              string                 `json:"assigned_official,omitempty"`
	SharedDocuments               []transaction.Document `json:"shared_documents"`
	TokenIdentifier               string                 `json:"token_identifier,omitempty"`
	LedgerTransactionID           string                 `json:"ledger_transaction_id,omitempty"`
	InitiationReceiptHash         string                 `json:"initiation_receipt_hash,omitempty"`
	AgentAuthorizationReceiptHash string                 `json:"agent_authorization_receipt_hash,omitempty"`
	LedgerReceiptHash             string                 `json:"ledger_receipt_hash,omitempty"`
	ReviewComment                 string                 `json:"review_comment,omitempty"`
	ReviewedBy                    string                 `json:"reviewed_by,omitempty"`
	Next                          []stage.Stage          `json:"next_stages,omitempty"`
	CreatedAt                     time.Time              `json:"created_at"`
	UpdatedAt                     *time.Time             `json:"updated_at,omitempty"`
	FinalizedAt                   *time.Time             `json:"finalized_at,omitempty"`
}

func toParty(p transaction.Party) partyResponse {
	return partyResponse{
		PartyID:           p.PartyID,
		DisplayName:       p.DisplayName,
		ContactInfo:       p.ContactInfo,
		WalletAddress:     p.WalletAddress,
		Accepted:          p.Accepted,
		DocumentsVerified: p.DocumentsVerified,
		RejectionComment:  p.RejectionComment,
	}
}

func ToResponse(tx *transaction.Transaction) transactionResponse {
	docs := tx.SharedDocuments
	if docs == nil {
		docs = []transaction.Document{}
	}

	return transactionResponse{
		ID:                            tx.ID,
		Stage:                         tx.Stage,
		StageLabel:                    tx.Stage.Label(),
		ParcelIdentifier:              tx.ParcelIdentifier,
		Location:                      tx.Location,
		Buyer:                         toParty(tx.Buyer),
		Seller:                        toParty(tx.Seller),
		Intermediary:                  toParty(tx.Intermediary),
		AssignedOfficial:              tx.AssignedOfficial,
		SharedDocuments:               docs,
		TokenIdentifier:               tx.TokenIdentifier,
		LedgerTransactionID:           tx.LedgerTransactionID,
		InitiationReceiptHash:         tx.InitiationReceiptHash,
		AgentAuthorizationReceiptHash: tx.AgentAuthorizationReceiptHash,
		LedgerReceiptHash:             tx.LedgerReceiptHash,
		ReviewComment:                 tx.ReviewComment,
		ReviewedBy:                    tx.ReviewedBy,
		Next:                          stage.Successors(tx.Stage),
		CreatedAt:                     tx.CreatedAt,
		UpdatedAt:                     tx.UpdatedAt,
		FinalizedAt:                   tx.FinalizedAt,
	}
}

func ToResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}
