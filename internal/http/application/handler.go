package application

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/application"
	"github.com/MrJamesThe3rd/titledeed/internal/http/respond"
	"github.com/MrJamesThe3rd/titledeed/internal/transaction"
)

type Handler struct {
	svc *application.Service
}

func NewHandler(svc *application.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.submit)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/review", h.review)
}

type profile struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	LicenseNumber    string `json:"license_number"`
	FirmName         string `json:"firm_name"`
	FirmRegistration string `json:"firm_registration"`
	WalletAddress    string `json:"wallet_address"`
}

type applicationResponse struct {
	ID                   uuid.UUID          `json:"id"`
	ApplicantID          string             `json:"applicant_id"`
	Status               application.Status `json:"status"`
	Profile              profile            `json:"profile"`
	DocumentURLs         []string           `json:"document_urls"`
	AssignedOfficial     string             `json:"assigned_official,omitempty"`
	ReviewComment        string             `json:"review_comment,omitempty"`
	ReviewedBy           string             `json:"reviewed_by,omitempty"`
	RoleGrantReceiptHash string             `json:"role_grant_receipt_hash,omitempty"`
	SubmittedAt          time.Time          `json:"submitted_at"`
	ReviewedAt           *time.Time         `json:"reviewed_at,omitempty"`
}

func ToResponse(a *application.Application) applicationResponse {
	return applicationResponse{
		ID:          a.ID,
		ApplicantID: a.ApplicantID,
		Status:      a.Status,
		Profile: profile{
			FullName:         a.Profile.FullName,
			Email:            a.Profile.Email,
			Phone:            a.Profile.Phone,
			Address:          a.Profile.Address,
			LicenseNumber:    a.Profile.LicenseNumber,
			FirmName:         a.Profile.FirmName,
			FirmRegistration: a.Profile.FirmRegistration,
			WalletAddress:    a.Profile.WalletAddress,
		},
		DocumentURLs:         a.DocumentURLs,
		AssignedOfficial:     a.AssignedOfficial,
		ReviewComment:        a.ReviewComment,
		ReviewedBy:           a.ReviewedBy,
		RoleGrantReceiptHash: a.RoleGrantReceiptHash,
		SubmittedAt:          a.SubmittedAt,
		ReviewedAt:           a.ReviewedAt,
	}
}

func ToResponseList(as []*application.Application) []applicationResponse {
	resp := make([]applicationResponse, len(as))
	for i, a := range as {
		resp[i] = ToResponse(a)
	}

	return resp
}

type submitRequest struct {
	Profile      profile  `json:"profile"`
	DocumentURLs []string `json:"document_urls"`
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

	app, err := h.svc.Submit(r.Context(), a, application.Profile(req.Profile), req.DocumentURLs)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, ToResponse(app))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	a, ok := respond.Actor(w, r)
	if !ok {
		return
	}

	filter := application.ListFilter{}
	if a.Role != actor.RoleOfficial {
		filter.ApplicantID = new(a.ID)
	}

	apps, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponseList(apps))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	app, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(app))
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

	app, err := h.svc.Review(r.Context(), id, a, decision == transaction.DecisionAccept, req.Comment)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(app))
}
