package property

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
)

var ErrNotFound = fmt.Errorf("property %w", apperr.ErrNotFound)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}

	return "", apperr.Validation("unknown property status %q", s)
}

// Record is a property submitted for registration. Approved records are
// minted on the ledger; the receipt and token are written once.
type Record struct {
	ID                 uuid.UUID
	Status             Status
	ParcelIdentifier   string
	Location           string
	OwnerID            string
	OwnerWalletAddress string
	DocumentURLs       []string
	AssignedOfficial   string
	ReviewComment      string
	ReviewedBy         string
	LedgerReceiptHash  string
	TokenIdentifier    string
	SubmittedAt        time.Time
	ReviewedAt         *time.Time
}

func (r *Record) Minted() bool {
	return r.LedgerReceiptHash != ""
}
