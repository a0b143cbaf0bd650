package note

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// each pooled connection would get its own in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewSQLiteStore(context.Background(), db)
	require.NoError(t, err)
	return store
}

// Both Store implementations must agree on lifecycle and ordering semantics.
func forEachStore(t *testing.T, fn func(t *testing.T, store Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, setupSQLiteStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
}

func activeContents(t *testing.T, store Store) []string {
	t.Helper()
	active, err := store.Active(context.Background())
	require.NoError(t, err)
	out := make([]string, len(active))
	for i, n := range active {
		out[i] = n.Content
	}
	return out
}

func TestAppend_OrdersStrictlyIncreasing(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		first, err := store.Append(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, 0, first.Order)
		require.False(t, first.IsCompleted)
		require.Nil(t, first.CompletedAt)
		require.NotEmpty(t, first.ID)

		prev := first.Order
		for _, content := range []string{"b", "c", "d"} {
			n, err := store.Append(ctx, content)
			require.NoError(t, err)
			require.Greater(t, n.Order, prev)
			prev = n.Order
		}

		require.Equal(t, []string{"a", "b", "c", "d"}, activeContents(t, store))
	})
}

func TestMove_RelocatesAndRenumbers(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		for _, c := range []string{"a", "b", "c", "d"} {
			_, err := store.Append(ctx, c)
			require.NoError(t, err)
		}

		require.NoError(t, store.Move(ctx, 0, 2))
		require.Equal(t, []string{"b", "c", "a", "d"}, activeContents(t, store))

		// Every note's order equals its new index.
		active, err := store.Active(ctx)
		require.NoError(t, err)
		for i, n := range active {
			assert.Equal(t, i, n.Order)
		}

		require.NoError(t, store.Move(ctx, 3, 0))
		require.Equal(t, []string{"d", "b", "c", "a"}, activeContents(t, store))
	})
}

func TestMove_OutOfRange(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		_, err := store.Append(ctx, "a")
		require.NoError(t, err)

		require.ErrorIs(t, store.Move(ctx, 0, 5), ErrBadMove)
		require.ErrorIs(t, store.Move(ctx, -1, 0), ErrBadMove)
	})
}

func TestComplete_And_Uncomplete(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		a, err := store.Append(ctx, "a")
		require.NoError(t, err)
		_, err = store.Append(ctx, "b")
		require.NoError(t, err)
		c, err := store.Append(ctx, "c")
		require.NoError(t, err)

		done, err := store.Complete(ctx, a.ID)
		require.NoError(t, err)
		require.True(t, done.IsCompleted)
		require.NotNil(t, done.CompletedAt)
		require.WithinDuration(t, time.Now(), *done.CompletedAt, 5*time.Second)

		// completing twice is not a transition
		_, err = store.Complete(ctx, a.ID)
		require.ErrorIs(t, err, ErrNotFound)

		// uncomplete appends after every currently-active note
		back, err := store.Uncomplete(ctx, a.ID)
		require.NoError(t, err)
		require.False(t, back.IsCompleted)
		require.Nil(t, back.CompletedAt)
		require.Greater(t, back.Order, c.Order)
		require.Equal(t, []string{"b", "c", "a"}, activeContents(t, store))

		_, err = store.Uncomplete(ctx, a.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestClearCompleted(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		a, err := store.Append(ctx, "a")
		require.NoError(t, err)
		b, err := store.Append(ctx, "b")
		require.NoError(t, err)
		_, err = store.Append(ctx, "c")
		require.NoError(t, err)

		_, err = store.Complete(ctx, a.ID)
		require.NoError(t, err)
		_, err = store.Complete(ctx, b.ID)
		require.NoError(t, err)

		removed, err := store.ClearCompleted(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 2, removed)

		completed, err := store.Completed(ctx)
		require.NoError(t, err)
		require.Empty(t, completed)
		require.Equal(t, []string{"c"}, activeContents(t, store))
	})
}

func TestImportBatch_AppendsInArrayOrder(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		created, err := store.ImportBatch(ctx, []string{"a", "b", "c"})
		require.NoError(t, err)
		require.Len(t, created, 3)
		for i, n := range created {
			assert.Equal(t, i, n.Order)
			assert.False(t, n.IsCompleted)
		}
		require.Equal(t, []string{"a", "b", "c"}, activeContents(t, store))

		// importing into a non-empty list continues after the tail
		more, err := store.ImportBatch(ctx, []string{"d"})
		require.NoError(t, err)
		require.Equal(t, 3, more[0].Order)
	})
}

func TestUpdateContent_And_Delete(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		n, err := store.Append(ctx, "old")
		require.NoError(t, err)

		updated, err := store.UpdateContent(ctx, n.ID, "new title\nbody")
		require.NoError(t, err)
		require.Equal(t, "new title\nbody", updated.Content)
		require.Equal(t, "new title", updated.Title())

		_, err = store.UpdateContent(ctx, "missing", "x")
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, store.Delete(ctx, n.ID))
		require.ErrorIs(t, store.Delete(ctx, n.ID), ErrNotFound)
		_, err = store.Get(ctx, n.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

// Duplicate order keys only come from external corruption; both stores must
// still present the same sequence, breaking the tie on created_at.
func TestActive_DuplicateOrderTieBreak(t *testing.T) {
	newer := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	older := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	t.Run("memory", func(t *testing.T) {
		// insertion order inverted relative to created_at
		store := &MemoryStore{notes: []Note{
			{ID: "n-new", Content: "newer", Order: 5, CreatedAt: newer},
			{ID: "n-old", Content: "older", Order: 5, CreatedAt: older},
		}}
		require.Equal(t, []string{"older", "newer"}, activeContents(t, store))
	})

	t.Run("sqlite", func(t *testing.T) {
		store := setupSQLiteStore(t)
		ctx := context.Background()

		first, err := store.Append(ctx, "newer")
		require.NoError(t, err)
		second, err := store.Append(ctx, "older")
		require.NoError(t, err)

		for id, createdAt := range map[string]time.Time{first.ID: newer, second.ID: older} {
			_, err = store.db.ExecContext(ctx,
				`UPDATE notes SET sort_order = 5, created_at = ? WHERE id = ?`,
				createdAt.Format(timeFormat), id)
			require.NoError(t, err)
		}
		require.Equal(t, []string{"older", "newer"}, activeContents(t, store))
	})
}

func TestHistogramByDay(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		for _, c := range []string{"a", "b", "c"} {
			_, err := store.Append(ctx, c)
			require.NoError(t, err)
		}
		active, err := store.Active(ctx)
		require.NoError(t, err)
		for _, n := range active[:2] {
			_, err = store.Complete(ctx, n.ID)
			require.NoError(t, err)
		}

		hist, err := store.HistogramByDay(ctx, 7)
		require.NoError(t, err)
		require.Len(t, hist, 7)

		// all completions landed today, the most recent bucket
		require.Equal(t, 2, hist[6].Count)
		for _, dc := range hist[:6] {
			assert.Zero(t, dc.Count)
		}
		for i := 1; i < len(hist); i++ {
			assert.True(t, hist[i].Date.After(hist[i-1].Date))
		}
		// bucket boundaries are UTC calendar days regardless of server zone
		for _, dc := range hist {
			assert.Equal(t, time.UTC, dc.Date.Location())
		}
	})
}

func TestBucketByDay_Boundaries(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	completions := []time.Time{
		now.Add(-time.Hour),                // today
		now.AddDate(0, 0, -1),              // yesterday
		now.AddDate(0, 0, -6),              // oldest bucket
		now.AddDate(0, 0, -7),              // outside the window
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), // day start is inclusive
	}

	hist := bucketByDay(completions, 7, now)
	require.Len(t, hist, 7)
	assert.Equal(t, 1, hist[0].Count)
	assert.Equal(t, 1, hist[5].Count)
	assert.Equal(t, 2, hist[6].Count)
}
