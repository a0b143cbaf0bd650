package review

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dunkirk-sh/ennote/internal/note"
	"github.com/dunkirk-sh/ennote/internal/notify"
)

// Handlers exposes stack mode over HTTP. At most one session exists at a
// time; starting a new one replaces the old, matching the single review
// surface of the app.
type Handlers struct {
	store    note.Store
	notifier *notify.Notifier

	mu      sync.Mutex
	session *Session
}

func NewHandlers(store note.Store, notifier *notify.Notifier) *Handlers {
	return &Handlers{store: store, notifier: notifier}
}

func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.start)
	r.Get("/current", h.current)
	r.Post("/complete", h.completeCurrent)
	r.Post("/timer", h.setTimer)
	r.Delete("/timer", h.clearTimer)

	return r
}

func (h *Handlers) current(w http.ResponseWriter, r *http.Request) {
	s := h.active()
	if s == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no session"})
		return
	}

	cur, err := s.Current(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	done, total, err := s.Progress(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"current":   cur,
		"done":      cur == nil,
		"progress":  done,
		"total":     total,
		"timer_end": s.TimerEnd(),
	})
}

func (h *Handlers) start(w http.ResponseWriter, r *http.Request) {
	s, err := Start(r.Context(), h.store)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.mu.Lock()
	h.session = s
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]int{"total": s.InitialCount()})
}

func (h *Handlers) completeCurrent(w http.ResponseWriter, r *http.Request) {
	s := h.active()
	if s == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no session"})
		return
	}

	n, err := s.CompleteCurrent(r.Context())
	if errors.Is(err, note.ErrNotFound) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "session complete"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.notifier.Notify(notify.Event{Type: notify.EventCompleted, NoteID: n.ID})
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) setTimer(w http.ResponseWriter, r *http.Request) {
	s := h.active()
	if s == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no session"})
		return
	}

	var req struct {
		Duration string `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil || d <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid duration"})
		return
	}

	end := s.SetTimer(d)
	writeJSON(w, http.StatusOK, map[string]any{"timer_end": end})
}

func (h *Handlers) clearTimer(w http.ResponseWriter, r *http.Request) {
	s := h.active()
	if s == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no session"})
		return
	}
	s.ClearTimer()
	w.WriteHeader(http.StatusNoContent)
}

// TimerEnd exposes the active session's countdown for the widget snapshot.
// Nil when no session or no timer is running.
func (h *Handlers) TimerEnd() *time.Time {
	s := h.active()
	if s == nil {
		return nil
	}
	return s.TimerEnd()
}

func (h *Handlers) active() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
