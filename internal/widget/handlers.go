package widget

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dunkirk-sh/ennote/internal/notify"
)

// Handlers is the widget surface: snapshot reads and the completion intent.
type Handlers struct {
	provider *Provider
	notifier *notify.Notifier
}

func NewHandlers(provider *Provider, notifier *notify.Notifier) *Handlers {
	return &Handlers{provider: provider, notifier: notifier}
}

func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/snapshot", h.snapshot)
	r.Post("/complete", h.complete)

	return r
}

func (h *Handlers) snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.Snapshot(r.Context()))
}

// complete accepts a note identifier string and completes that note.
// An id that does not resolve is a no-op, not an error.
func (h *Handlers) complete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NoteID string `json:"note_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	if n, ok := h.provider.Complete(r.Context(), req.NoteID); ok {
		h.notifier.Notify(notify.Event{Type: notify.EventCompleted, NoteID: n.ID})
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
