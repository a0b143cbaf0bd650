package note

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dunkirk-sh/ennote/internal/notify"
	"github.com/dunkirk-sh/ennote/internal/stringsx"
)

// Handlers is the primary app surface: the note list and its mutations.
type Handlers struct {
	store    Store
	notifier *notify.Notifier
}

func NewHandlers(store Store, notifier *notify.Notifier) *Handlers {
	return &Handlers{store: store, notifier: notifier}
}

func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/move", h.move)
	r.Post("/import", h.importBatch)
	r.Delete("/completed", h.clearCompleted)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.update)
		r.Delete("/", h.delete)
		r.Post("/complete", h.complete)
		r.Post("/uncomplete", h.uncomplete)
	})

	return r
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if stringsx.IsEmpty(req.Content) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "content required"})
		return
	}

	n, err := h.store.Append(r.Context(), req.Content)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.notifier.Notify(notify.Event{Type: notify.EventCreated, NoteID: n.ID})
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	active, err := h.store.Active(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	completed, err := h.store.Completed(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":    active,
		"completed": completed,
	})
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if stringsx.IsEmpty(req.Content) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "content required"})
		return
	}

	n, err := h.store.UpdateContent(r.Context(), chi.URLParam(r, "id"), req.Content)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.notifier.Notify(notify.Event{Type: notify.EventUpdated, NoteID: n.ID})
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	} else if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.notifier.Notify(notify.Event{Type: notify.EventDeleted, NoteID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) complete(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Complete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.notifier.Notify(notify.Event{Type: notify.EventCompleted, NoteID: n.ID})
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) uncomplete(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Uncomplete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.notifier.Notify(notify.Event{Type: notify.EventUncompleted, NoteID: n.ID})
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	err := h.store.Move(r.Context(), req.From, req.To)
	if errors.Is(err, ErrBadMove) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "index out of range"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.notifier.Notify(notify.Event{Type: notify.EventMoved})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) clearCompleted(w http.ResponseWriter, r *http.Request) {
	removed, err := h.store.ClearCompleted(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.notifier.Notify(notify.Event{Type: notify.EventCleared})
	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (h *Handlers) importBatch(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Contents) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "contents required"})
		return
	}

	created, err := h.store.ImportBatch(r.Context(), req.Contents)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.notifier.Notify(notify.Event{Type: notify.EventImported})
	writeJSON(w, http.StatusCreated, map[string]any{"items": created})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
