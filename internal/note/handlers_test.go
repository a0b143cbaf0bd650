package note

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dunkirk-sh/ennote/internal/notify"
)

func newTestHandlers(store Store) (http.Handler, *notify.Notifier) {
	notifier := notify.NewNotifier(nil)
	return NewHandlers(store, notifier).Routes(), notifier
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	return rr
}

func TestHandlers_Create_Validation(t *testing.T) {
	h, _ := newTestHandlers(NewMemoryStore())

	rr := doJSON(t, h, http.MethodPost, "/", `{"content":"   "}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, h, http.MethodPost, "/", `not json`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlers_Create_SignalsChange(t *testing.T) {
	h, notifier := newTestHandlers(NewMemoryStore())
	changes := notifier.Subscribe()

	rr := doJSON(t, h, http.MethodPost, "/", `{"content":"buy milk"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var got Note
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	require.Equal(t, "buy milk", got.Content)
	require.Equal(t, 0, got.Order)

	select {
	case <-changes:
	default:
		t.Fatal("expected a change signal after create")
	}
}

func TestHandlers_CompleteUncomplete_Flow(t *testing.T) {
	store := NewMemoryStore()
	h, _ := newTestHandlers(store)

	n, err := store.Append(context.Background(), "a")
	require.NoError(t, err)

	rr := doJSON(t, h, http.MethodPost, "/"+n.ID+"/complete", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var done Note
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&done))
	require.True(t, done.IsCompleted)
	require.NotNil(t, done.CompletedAt)

	rr = doJSON(t, h, http.MethodPost, "/"+n.ID+"/uncomplete", "")
	require.Equal(t, http.StatusOK, rr.Code)

	// transitions on missing notes are 404s
	rr = doJSON(t, h, http.MethodPost, "/nope/complete", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlers_Move(t *testing.T) {
	store := NewMemoryStore()
	h, _ := newTestHandlers(store)
	ctx := context.Background()
	for _, c := range []string{"a", "b", "c"} {
		_, err := store.Append(ctx, c)
		require.NoError(t, err)
	}

	rr := doJSON(t, h, http.MethodPost, "/move", `{"from":2,"to":0}`)
	require.Equal(t, http.StatusNoContent, rr.Code)

	active, err := store.Active(ctx)
	require.NoError(t, err)
	require.Equal(t, "c", active[0].Content)

	rr = doJSON(t, h, http.MethodPost, "/move", `{"from":9,"to":0}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlers_List_And_ClearCompleted(t *testing.T) {
	store := NewMemoryStore()
	h, _ := newTestHandlers(store)
	ctx := context.Background()

	a, err := store.Append(ctx, "a")
	require.NoError(t, err)
	_, err = store.Append(ctx, "b")
	require.NoError(t, err)
	_, err = store.Complete(ctx, a.ID)
	require.NoError(t, err)

	rr := doJSON(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Active    []Note `json:"active"`
		Completed []Note `json:"completed"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Active, 1)
	require.Len(t, resp.Completed, 1)

	rr = doJSON(t, h, http.MethodDelete, "/completed", "")
	require.Equal(t, http.StatusOK, rr.Code)

	completed, err := store.Completed(ctx)
	require.NoError(t, err)
	require.Empty(t, completed)
}

func TestHandlers_Import(t *testing.T) {
	store := NewMemoryStore()
	h, _ := newTestHandlers(store)

	rr := doJSON(t, h, http.MethodPost, "/import", `{"contents":["x","y"]}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, h, http.MethodPost, "/import", `{"contents":[]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	active, err := store.Active(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 2)
}

// errStore fails every read, for exercising 500 paths.
type errStore struct {
	Store
}

func (errStore) Active(context.Context) ([]Note, error) {
	return nil, errors.New("boom")
}

func TestHandlers_List_StoreError(t *testing.T) {
	h, _ := newTestHandlers(errStore{NewMemoryStore()})

	rr := doJSON(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
