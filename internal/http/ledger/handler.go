// Package ledger exposes the audit trail, parked reconciliations and receipt
// lookups by operation key.
package ledger

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/audit"
	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	"github.com/MrJamesThe3rd/titledeed/internal/http/respond"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

type Handler struct {
	audit  *audit.Service
	bridge *bridge.Bridge
	client ledger.Client
}

func NewHandler(a *audit.Service, b *bridge.Bridge, c ledger.Client) *Handler {
	return &Handler{audit: a, bridge: b, client: c}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/audit", h.listAudit)
	r.Get("/receipts/{key}", h.receipt)

	r.Group(func(r chi.Router) {
		r.Use(officialsOnly)
		r.Get("/reconciliations", h.listReconciliations)
		r.Post("/reconciliations/run", h.runReconciliation)
	})
}

func officialsOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := respond.Actor(w, r)
		if !ok {
			return
		}

		if a.Role != actor.RoleOfficial {
			respond.Error(w, r, apperr.Forbidden("reconciliations are for officials"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

type entryResponse struct {
	ID                uuid.UUID `json:"id"`
	OperationKey      string    `json:"operation_key"`
	Message           string    `json:"message"`
	LedgerReceiptHash string    `json:"ledger_receipt_hash,omitempty"`
	RelatedRecordID   uuid.UUID `json:"related_record_id"`
	ActorID           string    `json:"actor_id,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

func limit(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return n
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	filter := audit.ListFilter{Limit: limit(r)}

	if s := r.URL.Query().Get("record_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid record_id", http.StatusBadRequest)
			return
		}

		filter.RelatedRecordID = &id
	}

	if s := r.URL.Query().Get("operation_key"); s != "" {
		filter.OperationKey = &s
	}

	entries, err := h.audit.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = entryResponse(*e)
	}

	respond.JSON(w, http.StatusOK, resp)
}

type receiptResponse struct {
	OperationKey        string    `json:"operation_key"`
	Hash                string    `json:"hash"`
	TokenIdentifier     string    `json:"token_identifier,omitempty"`
	LedgerTransactionID string    `json:"ledger_transaction_id,omitempty"`
	ConfirmedAt         time.Time `json:"confirmed_at"`
}

func toReceipt(r ledger.Receipt) receiptResponse {
	return receiptResponse{
		OperationKey:        r.Key,
		Hash:                r.Hash,
		TokenIdentifier:     r.TokenIdentifier,
		LedgerTransactionID: r.LedgerTransactionID,
		ConfirmedAt:         r.ConfirmedAt,
	}
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	receipt, err := h.client.LookupReceipt(r.Context(), key)
	if err != nil {
		respond.Error(w, r, apperr.Ledger("lookup receipt", err))
		return
	}

	if receipt == nil {
		http.Error(w, "no receipt for "+key, http.StatusNotFound)
		return
	}

	respond.JSON(w, http.StatusOK, toReceipt(*receipt))
}

type reconciliationResponse struct {
	ID           uuid.UUID              `json:"id"`
	OperationKey string                 `json:"operation_key"`
	Kind         ledger.Kind            `json:"kind"`
	RecordID     uuid.UUID              `json:"record_id"`
	Receipt      receiptResponse        `json:"receipt"`
	ActorID      string                 `json:"actor_id,omitempty"`
	Status       bridge.ReconcileStatus `json:"status"`
	Attempts     int                    `json:"attempts"`
	LastError    string                 `json:"last_error,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func (h *Handler) listReconciliations(w http.ResponseWriter, r *http.Request) {
	rows, err := h.bridge.Pending(r.Context(), limit(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]reconciliationResponse, len(rows))
	for i, row := range rows {
		resp[i] = reconciliationResponse{
			ID:           row.ID,
			OperationKey: row.OperationKey,
			Kind:         row.Kind,
			RecordID:     row.RecordID,
			Receipt:      toReceipt(row.Receipt),
			ActorID:      row.ActorID,
			Status:       row.Status,
			Attempts:     row.Attempts,
			LastError:    row.LastError,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) runReconciliation(w http.ResponseWriter, r *http.Request) {
	resolved, err := h.bridge.Reconcile(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]int{"resolved": resolved})
}
