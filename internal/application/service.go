package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/assignment"
	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	"github.com/MrJamesThe3rd/titledeed/internal/event"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

type Repository interface {
	CreateApplication(ctx context.Context, a *Application) error
	GetApplication(ctx context.Context, id uuid.UUID) (*Application, error)
	ListApplications(ctx context.Context, filter ListFilter) ([]*Application, error)

	ClaimApplication(ctx context.Context, id uuid.UUID, officialID string) (bool, error)
	SetReviewed(ctx context.Context, id uuid.UUID, officialID string, status Status, comment string) (bool, error)
	CommitRoleGrant(ctx context.Context, id uuid.UUID, r ledger.Receipt) (bool, error)
}

type ListFilter struct {
	Status           *Status
	ApplicantID      *string
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

func (s *Service) Submit(ctx context.Context, applicant actor.Actor, profile Profile, documentURLs []string) (*Application, error) {
	if strings.TrimSpace(applicant.ID) == "" {
		return nil, apperr.Validation("applicant is required")
	}

	if strings.TrimSpace(profile.FullName) == "" || strings.TrimSpace(profile.LicenseNumber) == "" {
		return nil, apperr.Validation("full name and license number are required")
	}

	if profile.Email != "" {
		if _, err := mail.ParseAddress(profile.Email); err != nil {
			return nil, apperr.Validation("invalid email %q", profile.Email)
		}
	}

	if profile.WalletAddress == "" {
		profile.WalletAddress = applicant.WalletAddress
	}

	a := &Application{
		ApplicantID:  applicant.ID,
		Status:       StatusPending,
		Profile:      profile,
		DocumentURLs: documentURLs,
	}

	if err := s.repo.CreateApplication(ctx, a); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Application, error) {
	return s.repo.GetApplication(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Application, error) {
	return s.repo.ListApplications(ctx, filter)
}

func (s *Service) Pool(ctx context.Context) ([]*Application, error) {
	pending := StatusPending
	return s.repo.ListApplications(ctx, ListFilter{Status: &pending, Unassigned: true})
}

func (s *Service) Queue(ctx context.Context, officialID string) ([]*Application, error) {
	return s.repo.ListApplications(ctx, ListFilter{AssignedOfficial: &officialID})
}

func (s *Service) Claim(ctx context.Context, id uuid.UUID, official actor.Actor) error {
	a, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return err
	}

	if a.AssignedOfficial != "" {
		return assignment.Outcome(a.AssignedOfficial, official.ID, id)
	}

	if a.Status != StatusPending {
		return apperr.Validation("application %s is already %s", id, a.Status)
	}

	written, err := s.repo.ClaimApplication(ctx, id, official.ID)
	if err != nil {
		return fmt.Errorf("claim application: %w", err)
	}

	if written {
		return nil
	}

	current, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return err
	}

	if current.AssignedOfficial != "" {
		return assignment.Outcome(current.AssignedOfficial, official.ID, id)
	}

	return apperr.Concurrency("application %s left the pool", id)
}

// Review approves or rejects a claimed application. Approval needs the
// applicant's wallet and grants the intermediary role on the ledger.
func (s *Service) Review(ctx context.Context, id uuid.UUID, official actor.Actor, approve bool, comment string) (*Application, error) {
	comment = strings.TrimSpace(comment)
	if !approve && comment == "" {
		return nil, apperr.Validation("a comment is required to reject an application")
	}

	a, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if official.Role != actor.RoleOfficial || a.AssignedOfficial != official.ID {
		return nil, apperr.Forbidden("application %s is not assigned to %s", id, official.ID)
	}

	if approve && a.Profile.WalletAddress == "" {
		return nil, apperr.Prerequisite("applicant %s has no wallet address", a.ApplicantID)
	}

	status := StatusRejected
	if approve {
		status = StatusApproved
	}

	if a.Status != StatusPending {
		if a.Status != status {
			return nil, apperr.Validation("application %s was already %s", id, a.Status)
		}
	} else {
		written, err := s.repo.SetReviewed(ctx, id, official.ID, status, comment)
		if err != nil {
			return nil, fmt.Errorf("review application: %w", err)
		}

		if !written {
			return nil, apperr.Concurrency("application %s was reviewed concurrently", id)
		}

		s.logger.Info("application reviewed", "id", id, "status", status, "official", official.ID)

		msg := "Your application was rejected: " + comment
		if approve {
			msg = "Your application was approved"
		}

		s.notify(id, a.ApplicantID, msg)
	}

	if approve {
		if _, err := s.bridge.Execute(ctx, s.grantTarget(id), official.ID); err != nil {
			return nil, err
		}
	}

	return s.repo.GetApplication(ctx, id)
}

func (s *Service) notify(id uuid.UUID, recipient, msg string) {
	if s.events == nil {
		return
	}

	s.events.PublishAsync(event.TypeApplicationReview, event.New(event.TypeApplicationReview, event.Notification{
		RecordID:   id,
		Recipients: []string{recipient},
		Message:    msg,
		Link:       "/applications/" + id.String(),
	}))
}
