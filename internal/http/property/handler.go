package property

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/http/respond"
	"github.com/MrJamesThe3rd/titledeed/internal/property"
	"github.com/MrJamesThe3rd/titledeed/internal/transaction"
)

type Handler struct {
	svc *property.Service
}

func NewHandler(svc *property.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.submit)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/review", h.review)
	r.Post("/{id}/mint", h.mint)
}

type propertyResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Status             property.Status `json:"status"`
	ParcelIdentifier   string          `json:"parcel_identifier"`
	Location           string          `json:"location"`
	OwnerID            string          `json:"owner_id"`
	OwnerWalletAddress string          `json:"owner_wallet_address"`
	DocumentURLs       []string        `json:"document_urls"`
	AssignedOfficial   string          `json:"assigned_official,omitempty"`
	ReviewComment      string          `json:"review_comment,omitempty"`
	ReviewedBy         string          `json:"reviewed_by,omitempty"`
	LedgerReceiptHash  string          `json:"ledger_receipt_hash,omitempty"`
	TokenIdentifier    string          `json:"token_identifier,omitempty"`
	SubmittedAt        time.Time       `json:"submitted_at"`
	ReviewedAt         *time.Time      `json:"reviewed_at,omitempty"`
}

func ToResponse(p *property.Record) propertyResponse {
	return propertyResponse{
		ID:                 p.ID,
		Status:             p.Status,
		ParcelIdentifier:   p.ParcelIdentifier,
		Location:           p.Location,
		OwnerID:            p.OwnerID,
		OwnerWalletAddress: p.OwnerWalletAddress,
		DocumentURLs:       p.DocumentURLs,
		AssignedOfficial:   p.AssignedOfficial,
		ReviewComment:      p.ReviewComment,
		ReviewedBy:         p.ReviewedBy,
		LedgerReceiptHash:  p.LedgerReceiptHash,
		TokenIdentifier:    p.TokenIdentifier,
		SubmittedAt:        p.SubmittedAt,
		ReviewedAt:         p.ReviewedAt,
	}
}

func ToResponseList(ps []*property.Record) []propertyResponse {
	resp := make([]propertyResponse, len(ps))
	for i, p := range ps {
		resp[i] = ToResponse(p)
	}

	return resp
}

type submitRequest struct {
	ParcelIdentifier   string   `json:"parcel_identifier"`
	Location           string   `json:"location"`
	OwnerWalletAddress string   `json:"owner_wallet_address"`
	DocumentURLs       []string `json:"document_urls"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	a, ok := respond.Actor(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	rec, err := h.svc.Submit(r.Context(), a, property.SubmitParams{
		ParcelIdentifier:   req.ParcelIdentifier,
		Location:           req.Location,
		OwnerWalletAddress: req.OwnerWalletAddress,
		DocumentURLs:       req.DocumentURLs,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, ToResponse(rec))
}

// list shows officials every record, optionally by status, and owners their own.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	a, ok := respond.Actor(w, r)
	if !ok {
		return
	}

	filter := property.ListFilter{}

	if a.Role != actor.RoleOfficial {
		filter.OwnerID = new(a.ID)
	}

	if s := r.URL.Query().Get("status"); s != "" {
		st, err := property.ParseStatus(s)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		filter.Status = new(st)
	}

	recs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponseList(recs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(rec))
}

type reviewRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	a, ok := respond.Actor(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	decision, err := transaction.ParseDecision(req.Decision)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	rec, err := h.svc.Review(r.Context(), id, a, decision == transaction.DecisionAccept, req.Comment)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(rec))
}

func (h *Handler) mint(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	a, ok := respond.Actor(w, r)
	if !ok {
		return
	}

	rec, err := h.svc.Mint(r.Context(), id, a)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(rec))
}
