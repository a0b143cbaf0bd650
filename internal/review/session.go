// Package review implements stack mode: sequential one-at-a-time triage of
// the active note list.
package review

import (
	"context"
	"sync"
	"time"

	"github.com/dunkirk-sh/ennote/internal/note"
)

// Session presents the head of the live active-note sequence. It holds no
// frozen snapshot: completing the current note makes the next one current
// as soon as the transition lands in the store. There is no skip or back.
type Session struct {
	store note.Store

	// initialCount renders "N of M" progress only; it never drives control
	// flow.
	initialCount int

	mu       sync.Mutex
	timerEnd *time.Time
}

// Start opens a session over the store's current active notes.
func Start(ctx context.Context, store note.Store) (*Session, error) {
	active, err := store.Active(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{store: store, initialCount: len(active)}, nil
}

// Current returns the head of the active list, or nil when the session is
// complete.
func (s *Session) Current(ctx context.Context) (*note.Note, error) {
	active, err := s.store.Active(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}
	n := active[0]
	return &n, nil
}

// CompleteCurrent completes the head note. The next call to Current returns
// the following note in order. Returns note.ErrNotFound when the session is
// already done.
func (s *Session) CompleteCurrent(ctx context.Context) (note.Note, error) {
	cur, err := s.Current(ctx)
	if err != nil {
		return note.Note{}, err
	}
	if cur == nil {
		return note.Note{}, note.ErrNotFound
	}
	return s.store.Complete(ctx, cur.ID)
}

// Done reports whether every note has been completed.
func (s *Session) Done(ctx context.Context) (bool, error) {
	cur, err := s.Current(ctx)
	if err != nil {
		return false, err
	}
	return cur == nil, nil
}

// InitialCount is the number of active notes when the session started.
func (s *Session) InitialCount() int {
	return s.initialCount
}

// Progress returns how many of the initial notes are already handled and the
// initial total, for "N of M" display.
func (s *Session) Progress(ctx context.Context) (done, total int, err error) {
	active, err := s.store.Active(ctx)
	if err != nil {
		return 0, 0, err
	}
	done = s.initialCount - len(active)
	if done < 0 {
		// Notes appended mid-session; progress never goes negative.
		done = 0
	}
	return done, s.initialCount, nil
}

// SetTimer starts an advisory countdown. Expiry has no effect on note data.
func (s *Session) SetTimer(d time.Duration) time.Time {
	end := time.Now().Add(d)
	s.mu.Lock()
	s.timerEnd = &end
	s.mu.Unlock()
	return end
}

// TimerEnd returns the countdown's end time, or nil when no timer is set.
func (s *Session) TimerEnd() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timerEnd == nil {
		return nil
	}
	end := *s.timerEnd
	return &end
}

func (s *Session) ClearTimer() {
	s.mu.Lock()
	s.timerEnd = nil
	s.mu.Unlock()
}
