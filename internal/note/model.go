package note

import (
	"time"

	"github.com/dunkirk-sh/ennote/internal/stringsx"
)

// Note is a single short note. The first line of Content is conventionally
// the title, remaining lines the body.
type Note struct {
	ID          string     `json:"id"`
	Content     string     `json:"content"`
	IsCompleted bool       `json:"is_completed"`
	Order       int        `json:"order"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Title returns the note's first content line.
func (n Note) Title() string {
	return stringsx.FirstLine(n.Content)
}

// DayCount is one bucket of the completion-activity histogram.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

type CreateNoteRequest struct {
	Content string `json:"content"`
}

type UpdateNoteRequest struct {
	Content string `json:"content"`
}

type MoveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type ImportRequest struct {
	Contents []string `json:"contents"`
}
