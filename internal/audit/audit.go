package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is an immutable record of a committed ledger action.
type Entry struct {
	ID                uuid.UUID
	OperationKey      string
	Message           string
	LedgerReceiptHash string
	RelatedRecordID   uuid.UUID
	ActorID           string
	Timestamp         time.Time
}
