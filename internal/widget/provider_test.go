package widget

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dunkirk-sh/ennote/internal/logging"
	"github.com/dunkirk-sh/ennote/internal/note"
	"github.com/dunkirk-sh/ennote/internal/notify"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// brokenStore fails every read, standing in for missing durable storage.
type brokenStore struct {
	note.Store
}

func (brokenStore) Active(context.Context) ([]note.Note, error) {
	return nil, errors.New("storage unavailable")
}

func (brokenStore) HistogramByDay(context.Context, int) ([]note.DayCount, error) {
	return nil, errors.New("storage unavailable")
}

func TestProvider_Snapshot(t *testing.T) {
	ctx := context.Background()
	store := note.NewMemoryStore()

	a, err := store.Append(ctx, "first line\nsecond line")
	require.NoError(t, err)
	_, err = store.Append(ctx, "groceries")
	require.NoError(t, err)
	done, err := store.Append(ctx, "already done")
	require.NoError(t, err)
	_, err = store.Complete(ctx, done.ID)
	require.NoError(t, err)

	end := time.Now().Add(10 * time.Minute)
	p := NewProvider(store, func() *time.Time { return &end }, testLogger())

	snap := p.Snapshot(ctx)
	require.Len(t, snap.Notes, 2)
	require.Equal(t, a.ID, snap.Notes[0].ID)
	require.Equal(t, "first line", snap.Notes[0].Content) // title, not full body
	require.Equal(t, "groceries", snap.Notes[1].Content)
	require.NotNil(t, snap.TimerEnd)
	require.True(t, snap.TimerEnd.Equal(end))

	long, err := store.Append(ctx, "x"+strings.Repeat("y", 200))
	require.NoError(t, err)
	snap = p.Snapshot(ctx)
	require.Equal(t, long.ID, snap.Notes[2].ID)
	require.Len(t, snap.Notes[2].Content, maxRowLen)

	require.Len(t, snap.Activity, HistogramDays)
	require.Equal(t, 1, snap.Activity[HistogramDays-1].Count)
	require.False(t, snap.Date.IsZero())
}

func TestProvider_Snapshot_StoreFailureDegrades(t *testing.T) {
	p := NewProvider(brokenStore{}, nil, testLogger())

	snap := p.Snapshot(context.Background())
	require.NotNil(t, snap.Notes)
	require.Empty(t, snap.Notes)
	require.NotNil(t, snap.Activity)
	require.Empty(t, snap.Activity)
	require.Nil(t, snap.TimerEnd)
}

func TestProvider_Complete(t *testing.T) {
	ctx := context.Background()
	store := note.NewMemoryStore()
	n, err := store.Append(ctx, "task")
	require.NoError(t, err)

	p := NewProvider(store, nil, testLogger())

	got, ok := p.Complete(ctx, n.ID)
	require.True(t, ok)
	require.True(t, got.IsCompleted)

	// unknown ids and already-completed notes are silent no-ops
	_, ok = p.Complete(ctx, "no-such-id")
	require.False(t, ok)
	_, ok = p.Complete(ctx, n.ID)
	require.False(t, ok)
}

func TestRefresher_WakesOnChangeSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := note.NewMemoryStore()
	notifier := notify.NewNotifier(nil)
	p := NewProvider(store, nil, testLogger())

	snaps := make(chan Snapshot, 8)
	r := NewRefresher(p, notifier, time.Hour, func(s Snapshot) { snaps <- s })

	go r.Run(ctx)

	// let Run subscribe before signalling
	time.Sleep(20 * time.Millisecond)

	_, err := store.Append(ctx, "new note")
	require.NoError(t, err)
	notifier.Notify(notify.Event{Type: notify.EventCreated})

	select {
	case snap := <-snaps:
		require.Len(t, snap.Notes, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not wake on change signal")
	}
}

func TestRefresher_TicksOnInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := notify.NewNotifier(nil)
	p := NewProvider(note.NewMemoryStore(), nil, testLogger())

	snaps := make(chan Snapshot, 8)
	r := NewRefresher(p, notifier, 10*time.Millisecond, func(s Snapshot) { snaps <- s })

	go r.Run(ctx)

	select {
	case <-snaps:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not tick")
	}
}
