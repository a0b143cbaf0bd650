package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dunkirk-sh/ennote/internal/config"
	"github.com/dunkirk-sh/ennote/internal/db"
	"github.com/dunkirk-sh/ennote/internal/logging"
	"github.com/dunkirk-sh/ennote/internal/note"
	"github.com/dunkirk-sh/ennote/internal/notify"
	"github.com/dunkirk-sh/ennote/internal/review"
	"github.com/dunkirk-sh/ennote/internal/stack"
	"github.com/dunkirk-sh/ennote/internal/widget"
)

func main() {
	cfg := config.Load()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	ctx := context.Background()

	store := openNoteStore(ctx, cfg, log)

	hub := notify.NewHub(log)
	go hub.Run()
	notifier := notify.NewNotifier(hub)

	noteHandlers := note.NewHandlers(store, notifier)
	reviewHandlers := review.NewHandlers(store, notifier)

	provider := widget.NewProvider(store, reviewHandlers.TimerEnd, log)
	widgetHandlers := widget.NewHandlers(provider, notifier)

	refresher := widget.NewRefresher(provider, notifier, cfg.WidgetRefresh, func(snap widget.Snapshot) {
		hub.Broadcast(notify.Event{Type: notify.EventWidgetSnapshot, Data: snap})
	})
	go refresher.Run(ctx)

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Mount("/notes", noteHandlers.Routes())
	r.Mount("/review", reviewHandlers.Routes())
	r.Mount("/widget", widgetHandlers.Routes())
	r.Get("/ws", hub.Handler())

	if cfg.DatabaseURL != "" {
		stackHandlers, err := openStackService(ctx, cfg, store, notifier, log)
		if err != nil {
			log.Error(ctx, "pairing store unavailable", "err", err)
			os.Exit(1)
		}
		r.Mount("/stacks", stackHandlers.Routes())
	} else {
		log.Warn(ctx, "DATABASE_URL not set, pairing endpoints disabled")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info(ctx, "ennoted listening", "addr", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil {
		log.Error(ctx, "server stopped", "err", err)
		os.Exit(1)
	}
}

// openNoteStore opens the durable note store, falling back to a
// session-only in-memory store when SQLite cannot be initialized.
func openNoteStore(ctx context.Context, cfg config.Config, log logging.Logger) note.Store {
	sdb, err := db.OpenSQLite(cfg.NotesDBPath)
	if err != nil {
		log.Warn(ctx, "note database unavailable, using session-only store", "path", cfg.NotesDBPath, "err", err)
		return note.NewMemoryStore()
	}

	store, err := note.NewSQLiteStore(ctx, sdb)
	if err != nil {
		log.Warn(ctx, "note schema init failed, using session-only store", "err", err)
		_ = sdb.Close()
		return note.NewMemoryStore()
	}
	return store
}

func openStackService(ctx context.Context, cfg config.Config, store note.Store, notifier *notify.Notifier, log logging.Logger) (*stack.Handlers, error) {
	pg, err := db.Open(ctx, cfg.DatabaseURL, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime)
	if err != nil {
		return nil, err
	}
	if err := stack.Migrate(ctx, pg.SQL); err != nil {
		return nil, err
	}

	svc := stack.NewService(stack.NewRepository(pg.SQL), cfg.StackTTL, log)
	return stack.NewHandlers(svc, store, notifier), nil
}
