package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/stage"
)

var ErrNotFound = fmt.Errorf("transaction %w", apperr.ErrNotFound)

// Party is one participant of a transaction. Accepted and DocumentsVerified
// are tri-state: nil until the party acts.
type Party struct {
	PartyID           string
	DisplayName       string
	ContactInfo       string
	WalletAddress     string
	Accepted          *bool
	DocumentsVerified *bool
	RejectionComment  string
}

func (p Party) HasAccepted() bool {
	return p.Accepted != nil && *p.Accepted
}

func (p Party) HasVerified() bool {
	return p.DocumentsVerified != nil && *p.DocumentsVerified
}

func (p Party) HasRejected() bool {
	return p.DocumentsVerified != nil && !*p.DocumentsVerified
}

// Document is a shared document reference; the file itself lives elsewhere.
type Document struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Transaction is one property sale moving through the stage machine.
type Transaction struct {
	ID               uuid.UUID
	Stage            stage.Stage
	ParcelIdentifier string
	Location         string
	Buyer            Party
	Seller           Party
	Intermediary     Party

	AssignedOfficial       string
	AssignedOfficialWallet string
	SharedDocuments        []Document

	LedgerTransactionID           string
	InitiationReceiptHash         string
	AgentAuthorizationReceiptHash string
	LedgerReceiptHash             string
	TokenIdentifier               string

	ReviewComment string
	ReviewedBy    string

	CreatedAt   time.Time
	UpdatedAt   *time.Time
	FinalizedAt *time.Time
}

// Party returns the party playing role, if role is a party role.
func (t *Transaction) Party(role actor.Role) (Party, bool) {
	switch role {
	case actor.RoleBuyer:
		return t.Buyer, true
	case actor.RoleSeller:
		return t.Seller, true
	case actor.RoleIntermediary:
		return t.Intermediary, true
	}

	return Party{}, false
}

// Counterpart returns the other signing party.
func Counterpart(role actor.Role) actor.Role {
	if role == actor.RoleBuyer {
		return actor.RoleSeller
	}

	return actor.RoleBuyer
}

// SigningRole resolves which signing party a is on this transaction.
func (t *Transaction) SigningRole(a actor.Actor) (actor.Role, error) {
	if a.Role != actor.RoleBuyer && a.Role != actor.RoleSeller {
		return "", apperr.Forbidden("role %s cannot sign or verify", a.Role)
	}

	p, _ := t.Party(a.Role)
	if p.PartyID != a.ID {
		return "", apperr.Forbidden("actor %s is not the %s of transaction %s", a.ID, a.Role, t.ID)
	}

	return a.Role, nil
}

func (t *Transaction) checkIntermediary(a actor.Actor) error {
	if a.Role != actor.RoleIntermediary || t.Intermediary.PartyID != a.ID {
		return apperr.Forbidden("actor %s is not the intermediary of transaction %s", a.ID, t.ID)
	}

	return nil
}

func (t *Transaction) checkOfficial(a actor.Actor) error {
	if a.Role != actor.RoleOfficial {
		return apperr.Forbidden("actor %s is not an official", a.ID)
	}

	if t.AssignedOfficial != a.ID {
		return apperr.Forbidden("transaction %s is not assigned to %s", t.ID, a.ID)
	}

	return nil
}

// Involves reports whether partyID is a buyer, seller, intermediary or the assigned official.
func (t *Transaction) Involves(partyID string) bool {
	return partyID != "" && (partyID == t.Buyer.PartyID ||
		partyID == t.Seller.PartyID ||
		partyID == t.Intermediary.PartyID ||
		partyID == t.AssignedOfficial)
}

// OutstandingRejection reports whether a party has rejected the shared documents.
func (t *Transaction) OutstandingRejection() bool {
	return t.Buyer.HasRejected() || t.Seller.HasRejected()
}

// Evidence is the record state the stage guards look at.
func (t *Transaction) Evidence() stage.Evidence {
	return stage.Evidence{
		LedgerTransactionID: t.LedgerTransactionID,
		BuyerAccepted:       t.Buyer.HasAccepted(),
		SellerAccepted:      t.Seller.HasAccepted(),
		SharedDocuments:     len(t.SharedDocuments),
		BuyerVerified:       t.Buyer.HasVerified(),
		SellerVerified:      t.Seller.HasVerified(),
		AssignedOfficial:    t.AssignedOfficial,
		ReceiptHash:         t.LedgerReceiptHash,
	}
}

func (t *Transaction) signers() []string {
	return []string{t.Buyer.PartyID, t.Seller.PartyID}
}

func (t *Transaction) everyone() []string {
	ids := []string{t.Buyer.PartyID, t.Seller.PartyID, t.Intermediary.PartyID}
	if t.AssignedOfficial != "" {
		ids = append(ids, t.AssignedOfficial)
	}

	return ids
}

func sameWallet(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
