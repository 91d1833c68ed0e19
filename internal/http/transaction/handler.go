package transaction

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/http/respond"
	"github.com/MrJamesThe3rd/titledeed/internal/stage"
	"github.com/MrJamesThe3rd/titledeed/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/prerequisites", h.prerequisites)
	r.Get("/{id}", h.get)
	r.Post("/{id}/initiate", h.initiate)
	r.Post("/{id}/accept", h.accept)
	r.Post("/{id}/decline", h.decline)
	r.Post("/{id}/documents", h.shareDocuments)
	r.Post("/{id}/publish", h.publish)
	r.Post("/{id}/verification", h.verify)
	r.Post("/{id}/withdraw", h.withdraw)
	r.Post("/{id}/agent", h.authorizeAgent)
	r.Post("/{id}/review", h.review)
}

type partyRequest struct {
	PartyID       string `json:"party_id"`
	DisplayName   string `json:"display_name"`
	ContactInfo   string `json:"contact_info"`
	WalletAddress string `json:"wallet_address"`
}

func (p partyRequest) params() transaction.PartyParams {
	return transaction.PartyParams{
		PartyID:       p.PartyID,
		DisplayName:   p.DisplayName,
		ContactInfo:   p.ContactInfo,
		WalletAddress: p.WalletAddress,
	}
}

type createTransactionRequest struct {
	ParcelIdentifier    string       `json:"parcel_identifier"`
	Buyer               partyRequest `json:"buyer"`
	Seller              partyRequest `json:"seller"`
	IntermediaryName    string       `json:"intermediary_name"`
	IntermediaryContact string       `json:"intermediary_contact"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	a, ok := respond.Actor(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	tx, err := h.svc.Create(r.Context(), a, transaction.CreateParams{
		ParcelIdentifier:    req.ParcelIdentifier,
		Buyer:               req.Buyer.params(),
		Seller:              req.Seller.params(),
		IntermediaryName:    req.IntermediaryName,
		IntermediaryContact: req.IntermediaryContact,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, ToResponse(tx))
}

// list shows an official every transaction, optionally by stage, and anyone
// else the transactions they take part in.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	a, ok := respond.Actor(w, r)
	if !ok {
		return
	}

	var (
		txs []*transaction.Transaction
		err error
	)

	if a.Role == actor.RoleOfficial {
		filter := transaction.ListFilter{}

		if s := r.URL.Query().Get("stage"); s != "" {
			st, perr := stage.Parse(s)
			if perr != nil {
				respond.Error(w, r, perr)
				return
			}

			filter.Stage = new(st)
		}

		txs, err = h.svc.List(r.Context(), filter)
	} else {
		txs, err = h.svc.ListForParty(r.Context(), a.ID)
	}

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponseList(txs))
}

type prerequisitesResponse struct {
	ParcelIdentifier string `json:"parcel_identifier"`
	Location         string `json:"location"`
	TokenIdentifier  string `json:"token_identifier"`
	SellerAddress    string `json:"seller_address"`
	BuyerAddress     string `json:"buyer_address"`
}

func (h *Handler) prerequisites(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pre, err := h.svc.ResolvePrerequisites(r.Context(), q.Get("parcel"), q.Get("seller_wallet"), q.Get("buyer_wallet"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, prerequisitesResponse{
		ParcelIdentifier: pre.Asset.ParcelIdentifier,
		Location:         pre.Asset.Location,
		TokenIdentifier:  pre.Asset.TokenIdentifier,
		SellerAddress:    pre.SellerAddress,
		BuyerAddress:     pre.BuyerAddress,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	a, ok := respond.Actor(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.View(r.Context(), id, a)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(tx))
}

type action func(r *http.Request, id uuid.UUID, a actor.Actor) (*transaction.Transaction, error)

// act runs an operation on the {id} transaction as the caller.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, fn action) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	a, ok := respond.Actor(w, r)
	if !ok {
		return
	}

	tx, err := fn(r, id, a)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(tx))
}

func (h *Handler) initiate(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(r *http.Request, id uuid.UUID, a actor.Actor) (*transaction.Transaction, error) {
		return h.svc.Initiate(r.Context(), id, a)
	})
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(r *http.Request, id uuid.UUID, a actor.Actor) (*transaction.Transaction, error) {
		return h.svc.Accept(r.Context(), id, a)
	})
}

type commentRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) decline(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	h.act(w, r, func(r *http.Request, id uuid.UUID, a actor.Actor) (*transaction.Transaction, error) {
		return h.svc.Decline(r.Context(), id, a, req.Comment)
	})
}

type shareDocumentsRequest struct {
	Documents []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"documents"`
}

func (h *Handler) shareDocuments(w http.ResponseWriter, r *http.Request) {
	var req shareDocumentsRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	inputs := make([]transaction.DocumentInput, len(req.Documents))
	for i, d := range req.Documents {
		inputs[i] = transaction.DocumentInput{Name: strings.TrimSpace(d.Name), URL: strings.TrimSpace(d.URL)}
	}

	h.act(w, r, func(r *http.Request, id uuid.UUID, a actor.Actor) (*transaction.Transaction, error) {
		return h.svc.ShareDocuments(r.Context(), id, a, inputs)
	})
}

func (h *Handler) publish(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(r *http.Request, id uuid.UUID, a actor.Actor) (*transaction.Transaction, error) {
		return h.svc.PublishForVerification(r.Context(), id, a)
	})
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	decision, err := transaction.ParseDecision(req.Decision)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.act(w, r, func(r *http.Request, id uuid.UUID, a actor.Actor) (*transaction.Transaction, error) {
		return h.svc.Verify(r.Context(), id, a, decision, req.Comment)
	})
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	h.act(w, r, func(r *http.Request, id uuid.UUID, a actor.Actor) (*transaction.Transaction, error) {
		return h.svc.Withdraw(r.Context(), id, a, req.Comment)
	})
}

func (h *Handler) authorizeAgent(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(r *http.Request, id uuid.UUID, a actor.Actor) (*transaction.Transaction, error) {
		return h.svc.AuthorizeTransferAgent(r.Context(), id, a)
	})
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	decision, err := transaction.ParseDecision(req.Decision)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.act(w, r, func(r *http.Request, id uuid.UUID, a actor.Actor) (*transaction.Transaction, error) {
		return h.svc.Review(r.Context(), id, a, decision, req.Comment)
	})
}
