package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/artist-booking/internal/config"
	"github.com/example/artist-booking/internal/persistence"
	"github.com/example/artist-booking/internal/persistence/memory"
	"github.com/example/artist-booking/internal/persistence/sqlite"
	"github.com/example/artist-booking/internal/persistence/sqlite/migration"
)

// Store is an opened backend together with its readiness probe.
type Store struct {
	persistence.Store
	// Health is nil for backends without a connection to probe.
	Health func(ctx context.Context) error
}

// OpenStore opens the backend selected by cfg.StorageDriver. SQLite databases
// are migrated before they are returned.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return &Store{Store: memory.New()}, nil
	case config.DriverSQLite, "":
		storage, err := sqlite.Open(migration.DefaultSQLiteConfig(cfg.SQLiteDSN), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		if _, err := storage.Migrate(ctx); err != nil {
			_ = storage.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		return &Store{Store: storage, Health: storage.Ping}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
