package note

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dunkirk-sh/ennote/internal/db"
)

const timeFormat = time.RFC3339Nano

// SQLiteStore implements Store on a local SQLite database. Timestamps are
// stored as RFC3339 UTC text.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, sdb *sql.DB) (*SQLiteStore, error) {
	schema := `
CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    is_completed INTEGER NOT NULL DEFAULT 0,
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    completed_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_notes_active ON notes(is_completed, sort_order);
CREATE INDEX IF NOT EXISTS idx_notes_completed_at ON notes(completed_at);
`
	if _, err := sdb.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: sdb}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, content string) (Note, error) {
	n := Note{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	err := db.WithTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(sort_order), -1) + 1 FROM notes WHERE is_completed = 0
		`).Scan(&n.Order); err != nil {
			return fmt.Errorf("next order: %w", err)
		}
		return insertNote(ctx, tx, n)
	})
	if err != nil {
		return Note{}, err
	}
	return n, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Note, error) {
	return scanNote(s.db.QueryRowContext(ctx, `
		SELECT id, content, is_completed, sort_order, created_at, completed_at
		FROM notes WHERE id = ?
	`, id))
}

func (s *SQLiteStore) UpdateContent(ctx context.Context, id, content string) (Note, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE notes SET content = ? WHERE id = ?`, content, id)
	if err != nil {
		return Note{}, fmt.Errorf("update note: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return Note{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Active(ctx context.Context) ([]Note, error) {
	// created_at is the tie-break for duplicate order values, which can only
	// come from external data corruption. Tolerated, not repaired.
	return s.queryNotes(ctx, `
		SELECT id, content, is_completed, sort_order, created_at, completed_at
		FROM notes WHERE is_completed = 0
		ORDER BY sort_order, created_at
	`)
}

func (s *SQLiteStore) Completed(ctx context.Context) ([]Note, error) {
	return s.queryNotes(ctx, `
		SELECT id, content, is_completed, sort_order, created_at, completed_at
		FROM notes WHERE is_completed = 1
		ORDER BY completed_at DESC
	`)
}

// Move relocates the active note at index from to index to and renumbers
// every active note to its new position. A full renumbering pass keeps the
// keys collision-free at O(n) per move.
func (s *SQLiteStore) Move(ctx context.Context, from, to int) error {
	return db.WithTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		active, err := queryNotesTx(ctx, tx, `
			SELECT id, content, is_completed, sort_order, created_at, completed_at
			FROM notes WHERE is_completed = 0
			ORDER BY sort_order, created_at
		`)
		if err != nil {
			return err
		}

		moved, err := moveNote(active, from, to)
		if err != nil {
			return err
		}

		for i, n := range moved {
			if _, err := tx.ExecContext(ctx, `UPDATE notes SET sort_order = ? WHERE id = ?`, i, n.ID); err != nil {
				return fmt.Errorf("renumber note: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Complete(ctx context.Context, id string) (Note, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE notes SET is_completed = 1, completed_at = ?
		WHERE id = ? AND is_completed = 0
	`, now.Format(timeFormat), id)
	if err != nil {
		return Note{}, fmt.Errorf("complete note: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return Note{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Uncomplete re-enters the append path: the note's prior position is
// discarded and it lands after every currently-active note.
func (s *SQLiteStore) Uncomplete(ctx context.Context, id string) (Note, error) {
	err := db.WithTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		var next int
		if err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(sort_order), -1) + 1 FROM notes WHERE is_completed = 0
		`).Scan(&next); err != nil {
			return fmt.Errorf("next order: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE notes SET is_completed = 0, completed_at = NULL, sort_order = ?
			WHERE id = ? AND is_completed = 1
		`, next, id)
		if err != nil {
			return fmt.Errorf("uncomplete note: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return Note{}, err
	}
	return s.Get(ctx, id)
}

func (s *SQLiteStore) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE is_completed = 1`)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ImportBatch appends each content in array order via the normal creation
// path. The loop is tight and bounded by the pairing record's size, so it is
// not cancellable mid-way.
func (s *SQLiteStore) ImportBatch(ctx context.Context, contents []string) ([]Note, error) {
	out := make([]Note, 0, len(contents))
	err := db.WithTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		var next int
		if err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(sort_order), -1) + 1 FROM notes WHERE is_completed = 0
		`).Scan(&next); err != nil {
			return fmt.Errorf("next order: %w", err)
		}

		for i, content := range contents {
			n := Note{
				ID:        uuid.NewString(),
				Content:   content,
				Order:     next + i,
				CreatedAt: time.Now().UTC(),
			}
			if err := insertNote(ctx, tx, n); err != nil {
				return err
			}
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) HistogramByDay(ctx context.Context, days int) ([]DayCount, error) {
	if days <= 0 {
		return []DayCount{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT completed_at FROM notes
		WHERE is_completed = 1 AND completed_at IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	var completions []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		t, err := time.Parse(timeFormat, raw)
		if err != nil {
			continue
		}
		completions = append(completions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bucketByDay(completions, days, time.Now().UTC()), nil
}

// bucketByDay groups completion timestamps into calendar-day buckets ending
// at now's day, oldest first. Callers pass a UTC now so bucket boundaries do
// not depend on the server's timezone.
func bucketByDay(completions []time.Time, days int, now time.Time) []DayCount {
	out := make([]DayCount, 0, days)
	for daysAgo := days - 1; daysAgo >= 0; daysAgo-- {
		day := now.AddDate(0, 0, -daysAgo)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		end := start.AddDate(0, 0, 1)

		count := 0
		for _, c := range completions {
			c = c.In(day.Location())
			if !c.Before(start) && c.Before(end) {
				count++
			}
		}
		out = append(out, DayCount{Date: start, Count: count})
	}
	return out
}

func insertNote(ctx context.Context, tx db.DBTX, n Note) error {
	var completedAt any
	if n.CompletedAt != nil {
		completedAt = n.CompletedAt.UTC().Format(timeFormat)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO notes (id, content, is_completed, sort_order, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.Content, boolToInt(n.IsCompleted), n.Order, n.CreatedAt.Format(timeFormat), completedAt)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryNotes(ctx context.Context, query string) ([]Note, error) {
	return queryNotesTx(ctx, s.db, query)
}

func queryNotesTx(ctx context.Context, tx db.DBTX, query string) ([]Note, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	out := make([]Note, 0, 32)
	for rows.Next() {
		n, err := scanNoteRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNote(row *sql.Row) (Note, error) {
	n, err := scanNoteRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	return n, err
}

func scanNoteRow(scan func(...any) error) (Note, error) {
	var n Note
	var completed int
	var createdAt string
	var completedAt sql.NullString

	if err := scan(&n.ID, &n.Content, &completed, &n.Order, &createdAt, &completedAt); err != nil {
		return Note{}, err
	}

	n.IsCompleted = completed == 1
	t, err := time.Parse(timeFormat, createdAt)
	if err != nil {
		return Note{}, fmt.Errorf("parse created_at: %w", err)
	}
	n.CreatedAt = t

	if completedAt.Valid {
		ct, err := time.Parse(timeFormat, completedAt.String)
		if err != nil {
			return Note{}, fmt.Errorf("parse completed_at: %w", err)
		}
		n.CompletedAt = &ct
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
