// Package sqlite implements the persistence contracts on top of SQLite using
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/artist-booking/internal/persistence"
	"github.com/example/artist-booking/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// timeLayout is fixed width so TEXT comparison in SQL orders chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Storage bundles the SQLite repositories behind a single connection pool.
type Storage struct {
	*CategoryRepository
	*ArtistRepository
	*AvailabilityRepository
	*MomentRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

var _ persistence.Store = (*Storage)(nil)

// Open connects to the database described by config. Call Migrate before use
// on a fresh database.
func Open(config migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		CategoryRepository:     NewCategoryRepository(pool),
		ArtistRepository:       NewArtistRepository(pool),
		AvailabilityRepository: NewAvailabilityRepository(pool),
		MomentRepository:       NewMomentRepository(pool),
		pool:                   pool,
		logger:                 logger.With("component", "sqlite"),
	}, nil
}

// Migrate applies every pending embedded migration.
func (s *Storage) Migrate(ctx context.Context) ([]migration.Migration, error) {
	return s.migrationManager().Run(ctx)
}

// MigrationStatus reports applied and pending migrations.
func (s *Storage) MigrationStatus(ctx context.Context) (migration.Status, error) {
	return s.migrationManager().Status(ctx)
}

func (s *Storage) migrationManager() *migration.Manager {
	return migration.NewManager(
		migration.NewFSScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		s.logger,
	)
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", value, err)
	}
	return t.UTC(), nil
}

func nullableString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

// limitClause renders LIMIT/OFFSET for a page. SQLite requires a LIMIT before
// OFFSET, so -1 stands for "no limit".
func limitClause(page persistence.Page) (string, []any) {
	limit := page.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	return " LIMIT ? OFFSET ?", []any{limit, offset}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
