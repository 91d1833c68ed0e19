package property

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/assignment"
	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	"github.com/MrJamesThe3rd/titledeed/internal/event"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
	"github.com/MrJamesThe3rd/titledeed/internal/transaction"
)

type Repository interface {
	CreateProperty(ctx context.Context, r *Record) error
	GetProperty(ctx context.Context, id uuid.UUID) (*Record, error)
	// FindApprovedByParcel returns the approved record of a parcel.
	FindApprovedByParcel(ctx context.Context, parcelIdentifier string) (*Record, error)
	ListProperties(ctx context.Context, filter ListFilter) ([]*Record, error)

	ClaimProperty(ctx context.Context, id uuid.UUID, officialID string) (bool, error)
	// SetReviewed moves a pending record assigned to officialID to status.
	SetReviewed(ctx context.Context, id uuid.UUID, officialID string, status Status, comment string) (bool, error)
	// CommitMint stores the receipt and token while none is stored.
	CommitMint(ctx context.Context, id uuid.UUID, r ledger.Receipt) (bool, error)
}

type ListFilter struct {
	Status           *Status
	OwnerID          *string
	AssignedOfficial *string
	Unassigned       bool
}

type LedgerBridge interface {
	Execute(ctx context.Context, t bridge.Target, actorID string) (ledger.Receipt, error)
}

type Service struct {
	repo   Repository
	bridge LedgerBridge
	events event.Publisher
	logger *slog.Logger
}

func NewService(repo Repository, b LedgerBridge, events event.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Service{repo: repo, bridge: b, events: events, logger: logger}
}

type SubmitParams struct {
	ParcelIdentifier   string
	Location           string
	OwnerWalletAddress string
	DocumentURLs       []string
}

// Submit files a property for review on behalf of its owner.
func (s *Service) Submit(ctx context.Context, owner actor.Actor, params SubmitParams) (*Record, error) {
	if strings.TrimSpace(owner.ID) == "" {
		return nil, apperr.Validation("owner is required")
	}

	if strings.TrimSpace(params.ParcelIdentifier) == "" || strings.TrimSpace(params.Location) == "" {
		return nil, apperr.Validation("parcel identifier and location are required")
	}

	if len(params.DocumentURLs) == 0 {
		return nil, apperr.Validation("at least one ownership document is required")
	}

	wallet := params.OwnerWalletAddress
	if wallet == "" {
		wallet = owner.WalletAddress
	}

	r := &Record{
		Status:             StatusPending,
		ParcelIdentifier:   strings.TrimSpace(params.ParcelIdentifier),
		Location:           strings.TrimSpace(params.Location),
		OwnerID:            owner.ID,
		OwnerWalletAddress: wallet,
		DocumentURLs:       params.DocumentURLs,
	}

	if err := s.repo.CreateProperty(ctx, r); err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}

	return r, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetProperty(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	return s.repo.ListProperties(ctx, filter)
}

// Pool returns pending properties no official has claimed.
func (s *Service) Pool(ctx context.Context) ([]*Record, error) {
	pending := StatusPending
	return s.repo.ListProperties(ctx, ListFilter{Status: &pending, Unassigned: true})
}

func (s *Service) Queue(ctx context.Context, officialID string) ([]*Record, error) {
	return s.repo.ListProperties(ctx, ListFilter{AssignedOfficial: &officialID})
}

// ResolveAsset implements transaction.AssetRegistry.
func (s *Service) ResolveAsset(ctx context.Context, parcelIdentifier string) (transaction.Asset, error) {
	r, err := s.repo.FindApprovedByParcel(ctx, parcelIdentifier)
	if err != nil {
		return transaction.Asset{}, err
	}

	return transaction.Asset{
		ParcelIdentifier:   r.ParcelIdentifier,
		Location:           r.Location,
		OwnerWalletAddress: r.OwnerWalletAddress,
		TokenIdentifier:    r.TokenIdentifier,
	}, nil
}

func (s *Service) Claim(ctx context.Context, id uuid.UUID, official actor.Actor) error {
	r, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return err
	}

	if r.AssignedOfficial != "" {
		return assignment.Outcome(r.AssignedOfficial, official.ID, id)
	}

	if r.Status != StatusPending {
		return apperr.Validation("property %s is already %s", id, r.Status)
	}

	written, err := s.repo.ClaimProperty(ctx, id, official.ID)
	if err != nil {
		return fmt.Errorf("claim property: %w", err)
	}

	if written {
		return nil
	}

	current, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return err
	}

	if current.AssignedOfficial != "" {
		return assignment.Outcome(current.AssignedOfficial, official.ID, id)
	}

	return apperr.Concurrency("property %s left the pool", id)
}

// Review approves or rejects a claimed property. Approval mints the property
// on the ledger; a mint failure leaves it approved and unminted for Mint to retry.
func (s *Service) Review(ctx context.Context, id uuid.UUID, official actor.Actor, approve bool, comment string) (*Record, error) {
	comment = strings.TrimSpace(comment)
	if !approve && comment == "" {
		return nil, apperr.Validation("a comment is required to reject a property")
	}

	r, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}

	if official.Role != actor.RoleOfficial || r.AssignedOfficial != official.ID {
		return nil, apperr.Forbidden("property %s is not assigned to %s", id, official.ID)
	}

	status := StatusRejected
	if approve {
		status = StatusApproved
	}

	if r.Status != StatusPending {
		if r.Status != status {
			return nil, apperr.Validation("property %s was already %s", id, r.Status)
		}

		if approve && !r.Minted() {
			return s.Mint(ctx, id, official)
		}

		return r, nil
	}

	written, err := s.repo.SetReviewed(ctx, id, official.ID, status, comment)
	if err != nil {
		return nil, fmt.Errorf("review property: %w", err)
	}

	if !written {
		return nil, apperr.Concurrency("property %s was reviewed concurrently", id)
	}

	s.logger.Info("property reviewed", "id", id, "status", status, "official", official.ID)

	msg := "Your property registration was rejected: " + comment
	if approve {
		msg = "Your property registration was approved"
	}

	s.notify(event.TypePropertyReviewed, id, r.OwnerID, msg)

	if !approve {
		return s.repo.GetProperty(ctx, id)
	}

	return s.Mint(ctx, id, official)
}

// Mint registers an approved property on the ledger. Minting an already
// minted property returns it unchanged.
func (s *Service) Mint(ctx context.Context, id uuid.UUID, official actor.Actor) (*Record, error) {
	if _, err := s.bridge.Execute(ctx, s.mintTarget(id), official.ID); err != nil {
		return nil, err
	}

	return s.repo.GetProperty(ctx, id)
}

func (s *Service) notify(t event.Type, id uuid.UUID, recipient, msg string) {
	if s.events == nil {
		return
	}

	s.events.PublishAsync(t, event.New(t, event.Notification{
		RecordID:   id,
		Recipients: []string{recipient},
		Message:    msg,
		Link:       "/properties/" + id.String(),
	}))
}
