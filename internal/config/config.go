package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// DatabaseURL points at the shared pairing-record database (Postgres).
	// Empty disables the pairing endpoints.
	DatabaseURL string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// NotesDBPath is the SQLite file holding the note store.
	NotesDBPath string

	HTTPAddr string

	// StackTTL is how long a pairing record stays importable after creation.
	StackTTL time.Duration

	// WidgetRefresh is the fallback poll interval for the widget snapshot,
	// a backstop against missed change signals.
	WidgetRefresh time.Duration
}

func Load() Config {
	return Config{
		DatabaseURL:     getenv("DATABASE_URL", ""),
		MaxOpenConns:    getenvInt("DB_MAX_OPEN", 20),
		MaxIdleConns:    getenvInt("DB_MAX_IDLE", 10),
		ConnMaxLifetime: getenvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime: getenvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		NotesDBPath:     getenv("NOTES_DB_PATH", "ennote.db"),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		StackTTL:        getenvDuration("STACK_TTL", 5*time.Minute),
		WidgetRefresh:   getenvDuration("WIDGET_REFRESH", 15*time.Minute),
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
