// Package respond writes JSON bodies and maps core errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/http/auth"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Status maps an error category to its HTTP status. A parked ledger action
// is accepted: the ledger holds the result and the record catches up.
func Status(err error) int {
	switch {
	case errors.Is(err, apperr.ErrReconciliation):
		return http.StatusAccepted
	case errors.Is(err, apperr.ErrLedger):
		return http.StatusBadGateway
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrConcurrency):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrPrerequisite):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	}

	return http.StatusInternalServerError
}

func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}

	if status == http.StatusAccepted {
		slog.Error("ledger action awaiting reconciliation", "path", r.URL.Path, "error", err)
	}

	JSON(w, status, errorResponse{Error: msg})
}

// Decode reads a JSON body, answering 400 itself when it cannot.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}

	return true
}

// ID parses the {id} URL parameter, answering 400 itself when it cannot.
func ID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

// Actor returns the authenticated caller, answering 401 itself when absent.
func Actor(w http.ResponseWriter, r *http.Request) (actor.Actor, bool) {
	a, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
	}

	return a, ok
}
