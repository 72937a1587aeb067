package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/artist-booking/internal/persistence"
	"github.com/example/artist-booking/internal/persistence/memory"
	"github.com/example/artist-booking/internal/persistence/sqlite"
	"github.com/example/artist-booking/internal/persistence/sqlite/migration"
)

// Backend names a store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
)

// Backends lists every store implementation, for contract tests.
func Backends() []Backend {
	return []Backend{BackendMemory, BackendSQLite}
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewStore opens a fresh store of the given backend. SQLite stores live in a
// migrated file under tb.TempDir(). The store is closed on cleanup.
func NewStore(tb testing.TB, backend Backend) persistence.Store {
	tb.Helper()

	switch backend {
	case BackendMemory:
		store := memory.New()
		tb.Cleanup(func() { _ = store.Close() })
		return store
	case BackendSQLite:
		return NewSQLiteStorage(tb)
	default:
		tb.Fatalf("unknown backend %q", backend)
		return nil
	}
}

// NewSQLiteStorage opens a migrated SQLite storage in a temporary file.
func NewSQLiteStorage(tb testing.TB) *sqlite.Storage {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "artistbook.db")
	storage, err := sqlite.Open(migration.TempFileTestSQLiteConfig(path), DiscardLogger())
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = storage.Close() })

	if _, err := storage.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	return storage
}

// ForEachBackend runs fn as a subtest against a fresh store of every backend.
func ForEachBackend(t *testing.T, fn func(t *testing.T, store persistence.Store)) {
	t.Helper()
	for _, backend := range Backends() {
		backend := backend
		t.Run(string(backend), func(t *testing.T) {
			fn(t, NewStore(t, backend))
		})
	}
}
