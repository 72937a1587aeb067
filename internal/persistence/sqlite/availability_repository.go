package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/artist-booking/internal/persistence"
)

const slotColumns = `id, artist_id, start_time, end_time, created_at, updated_at`

// AvailabilityRepository implements persistence.AvailabilityRepository for
// SQLite. Writes run the overlap query and the insert or update inside one
// transaction; with _txlock=immediate the write lock is taken at BEGIN, so
// two writers for the same artist cannot both pass the check.
type AvailabilityRepository struct {
	pool        *ConnectionPool
	queryHelper *QueryHelper
	errorMapper *ErrorMapper
	retryHelper *RetryHelper
}

// NewAvailabilityRepository creates a new SQLite availability repository.
func NewAvailabilityRepository(pool *ConnectionPool) *AvailabilityRepository {
	return &AvailabilityRepository{
		pool:        pool,
		queryHelper: NewQueryHelper(pool),
		errorMapper: NewErrorMapper(),
		retryHelper: NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateSlot creates a slot unless it overlaps another slot of the same artist.
func (r *AvailabilityRepository) CreateSlot(ctx context.Context, slot persistence.AvailabilitySlot) error {
	if !slot.Start.Before(slot.End) {
		return fmt.Errorf("slot %s ends before it starts: %w", slot.ID, persistence.ErrConstraintViolation)
	}
	return r.retryHelper.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if err := r.checkSlotTx(ctx, tx, slot); err != nil {
				return err
			}
			_, err := r.queryHelper.ExecTx(ctx, tx, `
				INSERT INTO availability_slots (`+slotColumns+`)
				VALUES (?, ?, ?, ?, ?, ?)`,
				slot.ID, slot.ArtistID, formatTime(slot.Start), formatTime(slot.End),
				formatTime(slot.CreatedAt), formatTime(slot.UpdatedAt),
			)
			if err != nil {
				return fmt.Errorf("failed to create slot: %w", r.errorMapper.MapError(err))
			}
			return nil
		})
	})
}

// UpdateSlot updates a slot, excluding the slot itself from the overlap check.
func (r *AvailabilityRepository) UpdateSlot(ctx context.Context, slot persistence.AvailabilitySlot) error {
	if !slot.Start.Before(slot.End) {
		return fmt.Errorf("slot %s ends before it starts: %w", slot.ID, persistence.ErrConstraintViolation)
	}
	return r.retryHelper.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			var exists int
			err := r.queryHelper.QueryRowTx(ctx, tx, `SELECT 1 FROM availability_slots WHERE id = ?`, slot.ID).Scan(&exists)
			if errors.Is(err, sql.ErrNoRows) {
				return persistence.ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to load slot: %w", r.errorMapper.MapError(err))
			}

			if err := r.checkSlotTx(ctx, tx, slot); err != nil {
				return err
			}
			result, err := r.queryHelper.ExecTx(ctx, tx, `
				UPDATE availability_slots
				SET artist_id = ?, start_time = ?, end_time = ?, updated_at = ?
				WHERE id = ?`,
				slot.ArtistID, formatTime(slot.Start), formatTime(slot.End), formatTime(slot.UpdatedAt),
				slot.ID,
			)
			if err != nil {
				return fmt.Errorf("failed to update slot: %w", r.errorMapper.MapError(err))
			}
			return requireAffected(result)
		})
	})
}

// checkSlotTx verifies the artist exists and that no other slot of the artist
// intersects the half-open interval [Start, End).
func (r *AvailabilityRepository) checkSlotTx(ctx context.Context, tx *sql.Tx, slot persistence.AvailabilitySlot) error {
	var exists int
	err := r.queryHelper.QueryRowTx(ctx, tx, `SELECT 1 FROM artists WHERE id = ?`, slot.ArtistID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("artist %s: %w", slot.ArtistID, persistence.ErrForeignKeyViolation)
	}
	if err != nil {
		return fmt.Errorf("failed to load artist: %w", r.errorMapper.MapError(err))
	}

	var conflictID string
	err = r.queryHelper.QueryRowTx(ctx, tx, `
		SELECT id FROM availability_slots
		WHERE artist_id = ? AND id <> ? AND start_time < ? AND end_time > ?
		ORDER BY start_time ASC
		LIMIT 1`,
		slot.ArtistID, slot.ID, formatTime(slot.End), formatTime(slot.Start),
	).Scan(&conflictID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check slot overlap: %w", r.errorMapper.MapError(err))
	default:
		return fmt.Errorf("slot overlaps %s: %w", conflictID, persistence.ErrOverlap)
	}
}

// GetSlot retrieves a slot by ID.
func (r *AvailabilityRepository) GetSlot(ctx context.Context, id string) (persistence.AvailabilitySlot, error) {
	row := r.queryHelper.QueryRow(ctx, `SELECT `+slotColumns+` FROM availability_slots WHERE id = ?`, id)
	slot, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.AvailabilitySlot{}, persistence.ErrNotFound
		}
		return persistence.AvailabilitySlot{}, fmt.Errorf("failed to get slot: %w", r.errorMapper.MapError(err))
	}
	return slot, nil
}

// ListSlots lists every slot ordered by start time.
func (r *AvailabilityRepository) ListSlots(ctx context.Context, page persistence.Page) ([]persistence.AvailabilitySlot, int, error) {
	var total int
	if err := r.queryHelper.QueryRow(ctx, `SELECT COUNT(*) FROM availability_slots`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count slots: %w", r.errorMapper.MapError(err))
	}

	limit, args := limitClause(page)
	slots, err := r.querySlots(ctx,
		`SELECT `+slotColumns+` FROM availability_slots ORDER BY start_time ASC, id ASC`+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	return slots, total, nil
}

// ListSlotsByArtist lists every slot of one artist ordered by start time.
func (r *AvailabilityRepository) ListSlotsByArtist(ctx context.Context, artistID string) ([]persistence.AvailabilitySlot, error) {
	return r.querySlots(ctx,
		`SELECT `+slotColumns+` FROM availability_slots WHERE artist_id = ? ORDER BY start_time ASC, id ASC`, artistID)
}

// DeleteSlot deletes a slot by ID.
func (r *AvailabilityRepository) DeleteSlot(ctx context.Context, id string) error {
	return r.retryHelper.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM availability_slots WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete slot: %w", r.errorMapper.MapError(err))
		}
		return requireAffected(result)
	})
}

func (r *AvailabilityRepository) querySlots(ctx context.Context, query string, args ...any) ([]persistence.AvailabilitySlot, error) {
	rows, err := r.queryHelper.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", r.errorMapper.MapError(err))
	}
	defer rows.Close()

	slots := make([]persistence.AvailabilitySlot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate slots: %w", r.errorMapper.MapError(err))
	}
	return slots, nil
}

func scanSlot(row rowScanner) (persistence.AvailabilitySlot, error) {
	var (
		slot                             persistence.AvailabilitySlot
		start, end, createdAt, updatedAt        string
	)
	if err := row.Scan(&slot.ID, &slot.ArtistID, &start, &end, &createdAt, &updatedAt); err != nil {
		return persistence.AvailabilitySlot{}, err
	}

	var err error
	if slot.Start, err = parseTime(start); err != nil {
		return persistence.AvailabilitySlot{}, err
	}
	if slot.End, err = parseTime(end); err != nil {
		return persistence.AvailabilitySlot{}, err
	}
	if slot.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.AvailabilitySlot{}, err
	}
	if slot.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.AvailabilitySlot{}, err
	}
	return slot, nil
}
