package widget

import (
	"context"
	"time"

	"github.com/dunkirk-sh/ennote/internal/notify"
)

// Refresher keeps the widget surface current. It wakes on change signals
// from the notifier and on a fixed wall-clock interval as a backstop
// against missed signals, then recomputes the snapshot and hands it to sink.
type Refresher struct {
	provider *Provider
	notifier *notify.Notifier
	interval time.Duration
	sink     func(Snapshot)
}

func NewRefresher(provider *Provider, notifier *notify.Notifier, interval time.Duration, sink func(Snapshot)) *Refresher {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if sink == nil {
		sink = func(Snapshot) {}
	}
	return &Refresher{provider: provider, notifier: notifier, interval: interval, sink: sink}
}

// Run blocks until ctx is done. Rapid mutations coalesce into one refresh.
func (r *Refresher) Run(ctx context.Context) {
	changes := r.notifier.Subscribe()
	defer r.notifier.Unsubscribe(changes)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
		case <-ticker.C:
		}
		r.sink(r.provider.Snapshot(ctx))
	}
}
