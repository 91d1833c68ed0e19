// Package review serves the officials' shared pool, personal queues and claims
// across every kind of review item.
package review

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/application"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/assignment"
	applicationHandler "github.com/MrJamesThe3rd/titledeed/internal/http/application"
	propertyHandler "github.com/MrJamesThe3rd/titledeed/internal/http/property"
	"github.com/MrJamesThe3rd/titledeed/internal/http/respond"
	txHandler "github.com/MrJamesThe3rd/titledeed/internal/http/transaction"
	"github.com/MrJamesThe3rd/titledeed/internal/property"
	"github.com/MrJamesThe3rd/titledeed/internal/transaction"
)

type Handler struct {
	lock         *assignment.Lock
	transactions *transaction.Service
	properties   *property.Service
	applications *application.Service
}

func NewHandler(lock *assignment.Lock, txs *transaction.Service, props *property.Service, apps *application.Service) *Handler {
	return &Handler{lock: lock, transactions: txs, properties: props, applications: apps}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/pool/{kind}", h.pool)
	r.Get("/queue/{kind}", h.queue)
	r.Post("/claims/{kind}/{id}", h.claim)
}

func official(w http.ResponseWriter, r *http.Request) (actor.Actor, bool) {
	a, ok := respond.Actor(w, r)
	if !ok {
		return a, false
	}

	if a.Role != actor.RoleOfficial {
		respond.Error(w, r, apperr.Forbidden("only officials review items"))
		return a, false
	}

	return a, true
}

// items lists one kind either from the pool (officialID empty) or from an
// official's queue, already projected for the response.
func (h *Handler) items(ctx context.Context, kind assignment.Kind, officialID string) (any, error) {
	switch kind {
	case assignment.KindTransaction:
		var (
			txs []*transaction.Transaction
			err error
		)

		if officialID == "" {
			txs, err = h.transactions.Pool(ctx)
		} else {
			txs, err = h.transactions.Queue(ctx, officialID)
		}

		return txHandler.ToResponseList(txs), err
	case assignment.KindProperty:
		var (
			recs []*property.Record
			err  error
		)

		if officialID == "" {
			recs, err = h.properties.Pool(ctx)
		} else {
			recs, err = h.properties.Queue(ctx, officialID)
		}

		return propertyHandler.ToResponseList(recs), err
	case assignment.KindApplication:
		var (
			apps []*application.Application
			err  error
		)

		if officialID == "" {
			apps, err = h.applications.Pool(ctx)
		} else {
			apps, err = h.applications.Queue(ctx, officialID)
		}

		return applicationHandler.ToResponseList(apps), err
	}

	return nil, apperr.Validation("unknown item kind %q", kind)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, officialID string) {
	kind, err := assignment.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.items(r.Context(), kind, officialID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) pool(w http.ResponseWriter, r *http.Request) {
	if _, ok := official(w, r); !ok {
		return
	}

	h.list(w, r, "")
}

func (h *Handler) queue(w http.ResponseWriter, r *http.Request) {
	a, ok := official(w, r)
	if !ok {
		return
	}

	h.list(w, r, a.ID)
}

type claimResponse struct {
	Kind     assignment.Kind `json:"kind"`
	ID       uuid.UUID       `json:"id"`
	Official string          `json:"official"`
}

func (h *Handler) claim(w http.ResponseWriter, r *http.Request) {
	a, ok := respond.Actor(w, r)
	if !ok {
		return
	}

	kind, err := assignment.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	if err := h.lock.Claim(r.Context(), kind, id, a); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, claimResponse{Kind: kind, ID: id, Official: a.ID})
}
