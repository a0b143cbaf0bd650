// Package notify propagates note-store mutations to read-only surfaces.
//
// Delivery is fire-and-forget: in-process subscribers get a coalescing
// dirty signal (multiple rapid mutations may collapse into one observed
// refresh), and connected websocket clients get a broadcast event.
package notify

import "sync"

// Event describes a single store mutation or a pushed widget refresh.
type Event struct {
	Type   string `json:"type"`
	NoteID string `json:"note_id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	EventCreated     = "note_created"
	EventUpdated     = "note_updated"
	EventCompleted   = "note_completed"
	EventUncompleted = "note_uncompleted"
	EventDeleted     = "note_deleted"
	EventMoved       = "notes_moved"
	EventCleared     = "notes_cleared"
	EventImported    = "notes_imported"

	// EventWidgetSnapshot carries a freshly computed widget snapshot in Data.
	EventWidgetSnapshot = "widget_snapshot"
)

type Notifier struct {
	mu   sync.Mutex
	subs map[chan struct{}]bool
	hub  *Hub
}

// NewNotifier returns a notifier that fans events out to in-process
// subscribers and, when hub is non-nil, to websocket clients.
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{
		subs: make(map[chan struct{}]bool),
		hub:  hub,
	}
}

// Notify signals every subscriber that the store changed. It never blocks:
// a subscriber whose signal is already pending is skipped.
func (n *Notifier) Notify(ev Event) {
	n.mu.Lock()
	for ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	n.mu.Unlock()

	if n.hub != nil {
		n.hub.Broadcast(ev)
	}
}

// Subscribe registers a coalescing change signal. The channel carries no
// payload; a receive means "re-read the store".
func (n *Notifier) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.subs[ch] = true
	n.mu.Unlock()
	return ch
}

func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	if n.subs[ch] {
		delete(n.subs, ch)
		close(ch)
	}
	n.mu.Unlock()
}
