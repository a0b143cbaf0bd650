package stack

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/dunkirk-sh/ennote/internal/note"
	"github.com/dunkirk-sh/ennote/internal/notify"
	"github.com/dunkirk-sh/ennote/internal/stringsx"
)

const qrSize = 256

// Handlers serves both roles of the pairing flow: record creation for the
// web companion, fetch/import for the phone.
type Handlers struct {
	svc      *Service
	store    note.Store
	notifier *notify.Notifier
}

func NewHandlers(svc *Service, store note.Store, notifier *notify.Notifier) *Handlers {
	return &Handlers{svc: svc, store: store, notifier: notifier}
}

func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.create)
	r.Post("/scan", h.scan)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Get("/qr.png", h.qr)
		r.Post("/fetched", h.markFetched)
		r.Post("/import", h.importStack)
	})

	return r
}

// createRequest accepts either an explicit note list or a pasted text blob,
// which becomes one note per non-blank line.
type createRequest struct {
	Notes []string `json:"notes"`
	Text  string   `json:"text"`
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Notes) == 0 {
		req.Notes = stringsx.SplitLines(req.Text)
	}
	if len(req.Notes) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "notes required"})
		return
	}

	st, err := h.svc.CreateStack(r.Context(), req.Notes)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"stack":     st,
		"deep_link": st.DeepLink(),
	})
}

// scan resolves a raw scanned URI to a record id. Malformed links are
// rejected before any lookup, with the same user-facing answer as not-found.
func (h *Handlers) scan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URI string `json:"uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	id, ok := ParseDeepLink(req.URI)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invalid code"})
		return
	}
	h.respondStack(w, r, id)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	h.respondStack(w, r, chi.URLParam(r, "id"))
}

func (h *Handlers) respondStack(w http.ResponseWriter, r *http.Request, id string) {
	st, err := h.svc.FetchStack(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invalid code"})
		return
	}
	expired := errors.Is(err, ErrExpired)
	if err != nil && !expired {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stack":          st,
		"expired":        expired,
		"time_remaining": st.TimeRemaining(time.Now()).Seconds(),
	})
}

func (h *Handlers) markFetched(w http.ResponseWriter, r *http.Request) {
	err := h.svc.MarkFetched(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invalid code"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) importStack(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.FetchStack(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invalid code"})
		return
	}
	if errors.Is(err, ErrExpired) {
		writeJSON(w, http.StatusGone, map[string]string{"error": "code expired"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	created, err := h.svc.Import(r.Context(), h.store, st)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.notifier.Notify(notify.Event{Type: notify.EventImported})
	writeJSON(w, http.StatusCreated, map[string]any{"items": created})
}

// qr renders the record's deep link as a PNG at medium error correction.
func (h *Handlers) qr(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.FetchStack(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invalid code"})
		return
	}
	if err != nil && !errors.Is(err, ErrExpired) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	png, err := qrcode.Encode(st.DeepLink(), qrcode.Medium, qrSize)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
