package note

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a session-only Store used when durable storage fails to
// initialize. Contents are lost when the process exits.
type MemoryStore struct {
	mu    sync.Mutex
	notes []Note
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, content string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := Note{
		ID:        uuid.NewString(),
		Content:   content,
		Order:     s.nextOrderLocked(),
		CreatedAt: time.Now().UTC(),
	}
	s.notes = append(s.notes, n)
	return n, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.notes[i], nil
	}
	return Note{}, ErrNotFound
}

func (s *MemoryStore) UpdateContent(_ context.Context, id, content string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Note{}, ErrNotFound
	}
	s.notes[i].Content = content
	return s.notes[i], nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return ErrNotFound
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	return nil
}

func (s *MemoryStore) Active(_ context.Context) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked(), nil
}

func (s *MemoryStore) Completed(_ context.Context) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		if n.IsCompleted {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(*out[j].CompletedAt)
	})
	return out, nil
}

func (s *MemoryStore) Move(_ context.Context, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved, err := moveNote(s.activeLocked(), from, to)
	if err != nil {
		return err
	}
	for i, n := range moved {
		if j := s.indexLocked(n.ID); j >= 0 {
			s.notes[j].Order = i
		}
	}
	return nil
}

func (s *MemoryStore) Complete(_ context.Context, id string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 || s.notes[i].IsCompleted {
		return Note{}, ErrNotFound
	}
	now := time.Now().UTC()
	s.notes[i].IsCompleted = true
	s.notes[i].CompletedAt = &now
	return s.notes[i], nil
}

func (s *MemoryStore) Uncomplete(_ context.Context, id string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 || !s.notes[i].IsCompleted {
		return Note{}, ErrNotFound
	}
	s.notes[i].IsCompleted = false
	s.notes[i].CompletedAt = nil
	s.notes[i].Order = s.nextOrderLocked()
	return s.notes[i], nil
}

func (s *MemoryStore) ClearCompleted(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.notes[:0]
	var removed int64
	for _, n := range s.notes {
		if n.IsCompleted {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	s.notes = kept
	return removed, nil
}

func (s *MemoryStore) ImportBatch(_ context.Context, contents []string) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.nextOrderLocked()
	out := make([]Note, 0, len(contents))
	for i, content := range contents {
		n := Note{
			ID:        uuid.NewString(),
			Content:   content,
			Order:     next + i,
			CreatedAt: time.Now().UTC(),
		}
		s.notes = append(s.notes, n)
		out = append(out, n)
	}
	return out, nil
}

func (s *MemoryStore) HistogramByDay(_ context.Context, days int) ([]DayCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if days <= 0 {
		return []DayCount{}, nil
	}
	var completions []time.Time
	for _, n := range s.notes {
		if n.IsCompleted && n.CompletedAt != nil {
			completions = append(completions, *n.CompletedAt)
		}
	}
	return bucketByDay(completions, days, time.Now().UTC()), nil
}

func (s *MemoryStore) indexLocked(id string) int {
	for i, n := range s.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) activeLocked() []Note {
	out := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		if !n.IsCompleted {
			out = append(out, n)
		}
	}
	// created_at is the tie-break for duplicate order values, same as the
	// SQLite store.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryStore) nextOrderLocked() int {
	next := 0
	for _, n := range s.notes {
		if !n.IsCompleted && n.Order >= next {
			next = n.Order + 1
		}
	}
	return next
}
