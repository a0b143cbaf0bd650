package note

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when an id does not resolve to a note.
	ErrNotFound = errors.New("note not found")

	// ErrBadMove is returned when a move's indexes fall outside the
	// current active list.
	ErrBadMove = errors.New("move index out of range")
)

// Store is the single source of truth for notes. It is an abstraction over
// the durable storage, which also allows unit-testing handlers without a
// real database.
//
// Active notes form a total presentation order via the integer Order key:
// Append assigns last+1 (0 when the list is empty), Move renumbers every
// active note to its new position index, and Uncomplete re-enters the
// append path so the note lands after every currently-active note.
type Store interface {
	Append(ctx context.Context, content string) (Note, error)
	Get(ctx context.Context, id string) (Note, error)
	UpdateContent(ctx context.Context, id, content string) (Note, error)
	Delete(ctx context.Context, id string) error

	Active(ctx context.Context) ([]Note, error)
	Completed(ctx context.Context) ([]Note, error)

	Move(ctx context.Context, from, to int) error
	Complete(ctx context.Context, id string) (Note, error)
	Uncomplete(ctx context.Context, id string) (Note, error)
	ClearCompleted(ctx context.Context) (int64, error)

	ImportBatch(ctx context.Context, contents []string) ([]Note, error)

	// HistogramByDay returns completion counts for the most recent days
	// calendar days, oldest bucket first.
	HistogramByDay(ctx context.Context, days int) ([]DayCount, error)
}

// moveNote relocates the element at index from to index to, mirroring a
// drag-and-drop within the presented list. The caller renumbers afterwards.
func moveNote(list []Note, from, to int) ([]Note, error) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return nil, ErrBadMove
	}
	out := make([]Note, 0, len(list))
	out = append(out, list[:from]...)
	out = append(out, list[from+1:]...)
	out = append(out[:to], append([]Note{list[from]}, out[to:]...)...)
	return out, nil
}
