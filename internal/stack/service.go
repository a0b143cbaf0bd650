package stack

import (
	"context"
	"errors"
	"time"

	"github.com/dunkirk-sh/ennote/internal/logging"
	"github.com/dunkirk-sh/ennote/internal/note"
)

// ErrExpired marks a record that was found but is past its TTL.
var ErrExpired = errors.New("stack expired")

// Records is the storage behind the service; *Repository implements it.
type Records interface {
	Create(ctx context.Context, s Stack) error
	Get(ctx context.Context, id string) (Stack, error)
	MarkFetched(ctx context.Context, id string) error
}

// Service owns the pairing-record lifecycle on both ends: the web companion
// creates records, the phone fetches them and fans their contents into the
// note store.
type Service struct {
	records Records
	ttl     time.Duration
	log     logging.Logger
}

func NewService(records Records, ttl time.Duration, log logging.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{records: records, ttl: ttl, log: log}
}

// CreateStack generates a fresh record for the given note contents.
func (s *Service) CreateStack(ctx context.Context, notes []string) (Stack, error) {
	st, err := New(notes, s.ttl)
	if err != nil {
		return Stack{}, err
	}
	if err := s.records.Create(ctx, st); err != nil {
		return Stack{}, err
	}
	return st, nil
}

// FetchStack looks up a scanned id. A missing record returns ErrNotFound.
// An expired record is returned alongside ErrExpired: the lookup itself
// still succeeds, the consumer decides what to show.
func (s *Service) FetchStack(ctx context.Context, id string) (Stack, error) {
	st, err := s.records.Get(ctx, id)
	if err != nil {
		return Stack{}, err
	}
	if st.Expired(time.Now()) {
		return st, ErrExpired
	}
	return st, nil
}

// MarkFetched flips the record's fetched flag without importing, for clients
// that fetch contents and confirm separately.
func (s *Service) MarkFetched(ctx context.Context, id string) error {
	return s.records.MarkFetched(ctx, id)
}

// Import fans the record's contents into the note store via the normal
// creation path, in array order, then marks the record fetched. The mark is
// best-effort: a failure is logged, never propagated, and nothing prevents a
// concurrent second scanner from importing the same still-valid record.
func (s *Service) Import(ctx context.Context, store note.Store, st Stack) ([]note.Note, error) {
	created, err := store.ImportBatch(ctx, st.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.records.MarkFetched(ctx, st.ID); err != nil {
		s.log.Warn(ctx, "mark fetched failed", "stack_id", st.ID, "err", err)
	}
	return created, nil
}
