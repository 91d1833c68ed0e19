// Package events streams bus notifications to clients as server-sent events.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/event"
	"github.com/MrJamesThe3rd/titledeed/internal/http/respond"
)

type Handler struct {
	bus *event.EventBus
}

func NewHandler(bus *event.EventBus) *Handler {
	return &Handler{bus: bus}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.stream)
}

// visible reports whether a should see evt: officials see everything, others
// only notifications addressed to them.
func visible(a actor.Actor, evt event.Event) bool {
	return a.Role == actor.RoleOfficial || slices.Contains(evt.Data.Recipients, a.ID)
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	a, ok := respond.Actor(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	merged := make(chan event.Event, event.SubscriberQueueSize)

	for _, t := range event.Types {
		id := h.bus.SubscribeFunc(t, func(evt event.Event) {
			if !visible(a, evt) {
				return
			}

			select {
			case merged <- evt:
			default:
			}
		})
		defer h.bus.Unsubscribe(t, id)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-merged:
			payload, err := json.Marshal(evt.Data)
			if err != nil {
				slog.Error("failed to encode event", "type", evt.Type, "error", err)
				continue
			}

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, payload); err != nil {
				return
			}

			flusher.Flush()
		}
	}
}
