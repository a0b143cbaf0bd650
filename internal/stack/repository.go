package stack

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record exists under the given id.
// The caller surfaces it as "invalid code", distinct from transport errors.
var ErrNotFound = errors.New("stack not found")

// Repository persists pairing records in the shared Postgres database.
// Expired rows are returned as-is: expiry is a consumer-side check.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, s Stack) error {
	notes, err := json.Marshal(s.Notes)
	if err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO stacks (id, notes, created_at, expires_at, fetched)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, notes, s.CreatedAt, s.ExpiresAt, s.Fetched)
	if err != nil {
		return fmt.Errorf("insert stack: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (Stack, error) {
	var s Stack
	var notes []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, notes, created_at, expires_at, fetched
		FROM stacks WHERE id = $1
	`, id).Scan(&s.ID, &notes, &s.CreatedAt, &s.ExpiresAt, &s.Fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return Stack{}, ErrNotFound
	}
	if err != nil {
		return Stack{}, fmt.Errorf("select stack: %w", err)
	}

	if err := json.Unmarshal(notes, &s.Notes); err != nil {
		return Stack{}, fmt.Errorf("unmarshal notes: %w", err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.ExpiresAt = s.ExpiresAt.UTC()
	return s, nil
}

// MarkFetched flips the fetched flag. Best-effort single-consumption intent:
// nothing guards against two scanners importing the same still-valid record
// before either marks it.
func (r *Repository) MarkFetched(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE stacks SET fetched = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark fetched: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
