package application

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
)

var ErrNotFound = fmt.Errorf("application %w", apperr.ErrNotFound)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Profile is what an applicant submits about themselves and their practice.
type Profile struct {
	FullName         string
	Email            string
	Phone            string
	Address          string
	LicenseNumber    string
	FirmName         string
	FirmRegistration string
	WalletAddress    string
}

// Application is a request to act as an intermediary. Approval grants the
// intermediary role on the ledger.
type Application struct {
	ID                   uuid.UUID
	ApplicantID          string
	Status               Status
	Profile              Profile
	DocumentURLs         []string
	AssignedOfficial     string
	ReviewComment        string
	ReviewedBy           string
	RoleGrantReceiptHash string
	SubmittedAt          time.Time
	ReviewedAt           *time.Time
}
