package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	"github.com/MrJamesThe3rd/titledeed/internal/event"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
	"github.com/MrJamesThe3rd/titledeed/internal/stage"
)

// Every mutating method is a conditional write. A false result means the
// precondition no longer held and nothing was written.
//
//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	// SetAccepted sets the accepted flag of role while the stage is
	// awaiting_signatures and the flag is not yet true. counterpart is the
	// other signer's flag as seen by the same write.
	SetAccepted(ctx context.Context, id uuid.UUID, role actor.Role) (written, counterpart bool, err error)
	// SetVerification records the verdict of role while the stage is
	// awaiting_verification and role has not already accepted.
	SetVerification(ctx context.Context, id uuid.UUID, role actor.Role, accepted bool, comment string) (written, counterpart bool, err error)
	// AppendDocuments appends docs while the stage is docs_shared, or
	// awaiting_verification with an outstanding rejection; in the latter case
	// the rejecting party's verdict is reset.
	AppendDocuments(ctx context.Context, id uuid.UUID, intermediaryID string, docs []Document) (bool, error)
	// AdvanceStage moves from -> to when the stage is still from and guard holds.
	AdvanceStage(ctx context.Context, id uuid.UUID, from, to stage.Stage, guard stage.Guard, change StageChange) (bool, error)
	// ClaimTransaction assigns officialID while unassigned and verified, moving the stage to under_review.
	ClaimTransaction(ctx context.Context, id uuid.UUID, officialID, walletAddress string) (bool, error)

	CommitInitiation(ctx context.Context, id uuid.UUID, r ledger.Receipt) (bool, error)
	CommitAgentAuthorization(ctx context.Context, id uuid.UUID, r ledger.Receipt) (bool, error)
	// CommitFinalization stores the final receipt while AcceptsFinalization
	// holds. The ledger is authoritative, so a confirmed transfer overrides a
	// rejection that was written while it was in flight.
	CommitFinalization(ctx context.Context, id uuid.UUID, r ledger.Receipt) (bool, error)
}

// AcceptsFinalization reports whether a ledger-confirmed final receipt may be
// committed on tx.
func AcceptsFinalization(tx *Transaction) bool {
	switch tx.Stage {
	case stage.UnderReview:
		return true
	case stage.Rejected:
		return tx.AgentAuthorizationReceiptHash != ""
	default:
		return false
	}
}

// StageChange carries what a stage write records besides the stage itself.
type StageChange struct {
	ActorID string
	// Role is set when a signing party declines.
	Role    actor.Role
	Comment string
}

type ListFilter struct {
	Stage            *stage.Stage
	PartyID          *string
	AssignedOfficial *string
	Unassigned       bool
}

// AssetRegistry resolves the registered property behind a parcel.
type AssetRegistry interface {
	ResolveAsset(ctx context.Context, parcelIdentifier string) (Asset, error)
}

type Asset struct {
	ParcelIdentifier   string
	Location           string
	OwnerWalletAddress string
	TokenIdentifier    string
}

// LedgerBridge is satisfied by *bridge.Bridge.
type LedgerBridge interface {
	Execute(ctx context.Context, t bridge.Target, actorID string) (ledger.Receipt, error)
	// Confirmed returns the ledger's receipt for key, or nil when none landed.
	Confirmed(ctx context.Context, key string) (*ledger.Receipt, error)
}

type Service struct {
	repo   Repository
	assets AssetRegistry
	bridge LedgerBridge
	events event.Publisher
	logger *slog.Logger
}

type Option func(*Service)

func WithEvents(p event.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(repo Repository, assets AssetRegistry, b LedgerBridge, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		assets: assets,
		bridge: b,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// View returns the transaction if a is involved in it or is an official.
func (s *Service) View(ctx context.Context, id uuid.UUID, a actor.Actor) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.Role != actor.RoleOfficial && !tx.Involves(a.ID) {
		return nil, apperr.Forbidden("actor %s is not involved in transaction %s", a.ID, id)
	}

	return tx, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// ListForParty returns the transactions partyID takes part in.
func (s *Service) ListForParty(ctx context.Context, partyID string) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, ListFilter{PartyID: &partyID})
}

// Pool returns verified transactions no official has claimed.
func (s *Service) Pool(ctx context.Context) ([]*Transaction, error) {
	verified := stage.Verified
	return s.repo.ListTransactions(ctx, ListFilter{Stage: &verified, Unassigned: true})
}

// Queue returns the transactions claimed by officialID.
func (s *Service) Queue(ctx context.Context, officialID string) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, ListFilter{AssignedOfficial: &officialID})
}

type PartyParams struct {
	PartyID       string
	DisplayName   string
	ContactInfo   string
	WalletAddress string
}

type CreateParams struct {
	ParcelIdentifier string
	Buyer            PartyParams
	Seller           PartyParams
	// Intermediary details beyond the acting intermediary's id.
	IntermediaryName    string
	IntermediaryContact string
}

type Prerequisites struct {
	Asset         Asset
	SellerAddress string
	BuyerAddress  string
}

// ResolvePrerequisites checks that the parcel is registered and minted and
// that the seller's wallet owns it.
func (s *Service) ResolvePrerequisites(ctx context.Context, parcelIdentifier, sellerWallet, buyerWallet string) (Prerequisites, error) {
	parcelIdentifier = strings.TrimSpace(parcelIdentifier)
	if parcelIdentifier == "" {
		return Prerequisites{}, apperr.Validation("parcel identifier is required")
	}

	if strings.TrimSpace(sellerWallet) == "" || strings.TrimSpace(buyerWallet) == "" {
		return Prerequisites{}, apperr.Prerequisite("buyer and seller wallet addresses are required")
	}

	if sameWallet(sellerWallet, buyerWallet) {
		return Prerequisites{}, apperr.Validation("buyer and seller must use different wallets")
	}

	asset, err := s.assets.ResolveAsset(ctx, parcelIdentifier)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Prerequisites{}, apperr.Prerequisite("no approved property for parcel %s", parcelIdentifier)
		}

		return Prerequisites{}, fmt.Errorf("resolve asset %s: %w", parcelIdentifier, err)
	}

	if asset.TokenIdentifier == "" {
		return Prerequisites{}, apperr.Prerequisite("property %s is not minted yet", parcelIdentifier)
	}

	if !sameWallet(asset.OwnerWalletAddress, sellerWallet) {
		return Prerequisites{}, apperr.Prerequisite("seller wallet does not own parcel %s", parcelIdentifier)
	}

	return Prerequisites{Asset: asset, SellerAddress: sellerWallet, BuyerAddress: buyerWallet}, nil
}

// Create records a new transaction in the initiated stage.
func (s *Service) Create(ctx context.Context, intermediary actor.Actor, params CreateParams) (*Transaction, error) {
	if intermediary.Role != actor.RoleIntermediary {
		return nil, apperr.Forbidden("only an intermediary can create a transaction")
	}

	for role, p := range map[string]PartyParams{"buyer": params.Buyer, "seller": params.Seller} {
		if strings.TrimSpace(p.PartyID) == "" {
			return nil, apperr.Validation("%s party id is required", role)
		}
	}

	if params.Buyer.PartyID == params.Seller.PartyID {
		return nil, apperr.Validation("buyer and seller must be different parties")
	}

	pre, err := s.ResolvePrerequisites(ctx, params.ParcelIdentifier, params.Seller.WalletAddress, params.Buyer.WalletAddress)
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		Stage:            stage.Initiated,
		ParcelIdentifier: pre.Asset.ParcelIdentifier,
		Location:         pre.Asset.Location,
		Buyer:            toParty(params.Buyer),
		Seller:           toParty(params.Seller),
		Intermediary: Party{
			PartyID:       intermediary.ID,
			DisplayName:   params.IntermediaryName,
			ContactInfo:   params.IntermediaryContact,
			WalletAddress: intermediary.WalletAddress,
		},
		TokenIdentifier: pre.Asset.TokenIdentifier,
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.Info("transaction created", "id", tx.ID, "parcel", tx.ParcelIdentifier, "intermediary", intermediary.ID)

	return tx, nil
}

func toParty(p PartyParams) Party {
	return Party{
		PartyID:       p.PartyID,
		DisplayName:   p.DisplayName,
		ContactInfo:   p.ContactInfo,
		WalletAddress: p.WalletAddress,
	}
}

// advance performs the stage write for from -> to. Only the caller whose
// write flips the stage publishes the change.
func (s *Service) advance(ctx context.Context, tx *Transaction, to stage.Stage, change StageChange) (bool, error) {
	guard, ok := stage.GuardFor(tx.Stage, to)
	if !ok {
		return false, &stage.TransitionError{From: tx.Stage, To: to, Reason: "not a successor"}
	}

	moved, err := s.repo.AdvanceStage(ctx, tx.ID, tx.Stage, to, guard, change)
	if err != nil {
		return false, fmt.Errorf("advance %s to %s: %w", tx.ID, to, err)
	}

	if moved {
		s.logger.Info("transaction stage changed", "id", tx.ID, "from", tx.Stage, "to", to, "actor", change.ActorID)
		s.notify(event.TypeStageChanged, tx.ID, tx.everyone(), "Transaction moved to "+to.Label())
	}

	return moved, nil
}

// request validates and applies an explicitly requested transition. A request
// for a stage already reached is a no-op.
func (s *Service) request(ctx context.Context, tx *Transaction, to stage.Stage, role actor.Role, ev stage.Evidence, change StageChange) (*Transaction, error) {
	next, err := stage.Transition(tx.Stage, to, role, ev)
	if err != nil {
		return nil, err
	}

	if next == tx.Stage {
		return tx, nil
	}

	moved, err := s.advance(ctx, tx, to, change)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetTransaction(ctx, tx.ID)
	if err != nil {
		return nil, err
	}

	if !moved && !current.Stage.Reached(to) {
		return nil, apperr.Concurrency("transaction %s moved to %s before %s could be applied", tx.ID, current.Stage, to)
	}

	return current, nil
}

func (s *Service) notify(t event.Type, id uuid.UUID, recipients []string, msg string) {
	if s.events == nil {
		return
	}

	s.events.PublishAsync(t, event.New(t, event.Notification{
		RecordID:   id,
		Recipients: recipients,
		Message:    msg,
		Link:       "/transactions/" + id.String(),
	}))
}
