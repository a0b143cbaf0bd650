// Package widget computes the home-screen snapshot: the ordered active-note
// list, an optional countdown end time, and a 7-day completion histogram.
//
// The widget runs as a separate process from the app, so the provider never
// assumes in-memory coherence: every snapshot re-reads durable storage.
package widget

import (
	"context"
	"time"

	"github.com/dunkirk-sh/ennote/internal/logging"
	"github.com/dunkirk-sh/ennote/internal/note"
	"github.com/dunkirk-sh/ennote/internal/stringsx"
)

// HistogramDays is the span of the completion-activity strip.
const HistogramDays = 7

// maxRowLen bounds a widget row; the surface has no room for more.
const maxRowLen = 80

// WidgetNote carries just enough of a note to render a row.
type WidgetNote struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type Snapshot struct {
	Date     time.Time       `json:"date"`
	Notes    []WidgetNote    `json:"notes"`
	TimerEnd *time.Time      `json:"timer_end,omitempty"`
	Activity []note.DayCount `json:"activity"`
}

// Provider builds widget snapshots from the note store.
type Provider struct {
	store note.Store

	// timerEnd reports the review session's advisory countdown, if any.
	timerEnd func() *time.Time

	log logging.Logger
}

func NewProvider(store note.Store, timerEnd func() *time.Time, log logging.Logger) *Provider {
	if timerEnd == nil {
		timerEnd = func() *time.Time { return nil }
	}
	return &Provider{store: store, timerEnd: timerEnd, log: log}
}

// Snapshot reads the current widget state. A data-fetch failure degrades to
// an empty note list; the home-screen surface never sees an error.
func (p *Provider) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{
		Date:     time.Now().UTC(),
		Notes:    []WidgetNote{},
		TimerEnd: p.timerEnd(),
		Activity: []note.DayCount{},
	}

	active, err := p.store.Active(ctx)
	if err != nil {
		p.log.Warn(ctx, "widget active fetch failed", "err", err)
		return snap
	}
	for _, n := range active {
		snap.Notes = append(snap.Notes, WidgetNote{ID: n.ID, Content: stringsx.Clip(n.Title(), maxRowLen)})
	}

	activity, err := p.store.HistogramByDay(ctx, HistogramDays)
	if err != nil {
		p.log.Warn(ctx, "widget histogram fetch failed", "err", err)
		return snap
	}
	snap.Activity = activity
	return snap
}

// Complete handles the widget's completion intent. Unknown ids are a no-op.
func (p *Provider) Complete(ctx context.Context, id string) (note.Note, bool) {
	n, err := p.store.Complete(ctx, id)
	if err != nil {
		return note.Note{}, false
	}
	return n, true
}
