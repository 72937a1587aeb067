package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/artist-booking/internal/persistence"
)

const momentColumns = `id, artist_id, category_id, date, start_time, end_time, location, message, created_at, updated_at`

// MomentRepository implements persistence.MomentRepository for SQLite.
type MomentRepository struct {
	pool        *ConnectionPool
	queryHelper *QueryHelper
	errorMapper *ErrorMapper
	retryHelper *RetryHelper
}

// NewMomentRepository creates a new SQLite moment repository.
func NewMomentRepository(pool *ConnectionPool) *MomentRepository {
	return &MomentRepository{
		pool:        pool,
		queryHelper: NewQueryHelper(pool),
		errorMapper: NewErrorMapper(),
		retryHelper: NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateMoment creates a new moment.
func (r *MomentRepository) CreateMoment(ctx context.Context, moment persistence.Moment) error {
	return r.retryHelper.WithRetry(ctx, func() error {
		_, err := r.pool.DB().ExecContext(ctx, `
			INSERT INTO moments (`+momentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			moment.ID, moment.ArtistID, moment.CategoryID, moment.Date, moment.StartTime, moment.EndTime,
			moment.Location, nullableString(moment.Message),
			formatTime(moment.CreatedAt), formatTime(moment.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to create moment: %w", r.errorMapper.MapError(err))
		}
		return nil
	})
}

// UpdateMoment updates an existing moment. CreatedAt is preserved.
func (r *MomentRepository) UpdateMoment(ctx context.Context, moment persistence.Moment) error {
	return r.retryHelper.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, `
			UPDATE moments
			SET artist_id = ?, category_id = ?, date = ?, start_time = ?, end_time = ?, location = ?, message = ?, updated_at = ?
			WHERE id = ?`,
			moment.ArtistID, moment.CategoryID, moment.Date, moment.StartTime, moment.EndTime,
			moment.Location, nullableString(moment.Message), formatTime(moment.UpdatedAt),
			moment.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update moment: %w", r.errorMapper.MapError(err))
		}
		return requireAffected(result)
	})
}

// GetMoment retrieves a moment by ID.
func (r *MomentRepository) GetMoment(ctx context.Context, id string) (persistence.Moment, error) {
	row := r.queryHelper.QueryRow(ctx, `SELECT `+momentColumns+` FROM moments WHERE id = ?`, id)
	moment, err := scanMoment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Moment{}, persistence.ErrNotFound
		}
		return persistence.Moment{}, fmt.Errorf("failed to get moment: %w", r.errorMapper.MapError(err))
	}
	return moment, nil
}

// ListMoments lists moments by date and start time, latest first.
func (r *MomentRepository) ListMoments(ctx context.Context, page persistence.Page) ([]persistence.Moment, int, error) {
	var total int
	if err := r.queryHelper.QueryRow(ctx, `SELECT COUNT(*) FROM moments`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count moments: %w", r.errorMapper.MapError(err))
	}

	limit, args := limitClause(page)
	moments, err := r.queryMoments(ctx,
		`SELECT `+momentColumns+` FROM moments ORDER BY date DESC, start_time DESC, id ASC`+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	return moments, total, nil
}

// ListMomentsByArtist lists every moment of one artist in chronological order.
func (r *MomentRepository) ListMomentsByArtist(ctx context.Context, artistID string) ([]persistence.Moment, error) {
	return r.queryMoments(ctx,
		`SELECT `+momentColumns+` FROM moments WHERE artist_id = ? ORDER BY date ASC, start_time ASC, id ASC`, artistID)
}

// DeleteMoment deletes a moment by ID.
func (r *MomentRepository) DeleteMoment(ctx context.Context, id string) error {
	return r.retryHelper.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM moments WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete moment: %w", r.errorMapper.MapError(err))
		}
		return requireAffected(result)
	})
}

func (r *MomentRepository) queryMoments(ctx context.Context, query string, args ...any) ([]persistence.Moment, error) {
	rows, err := r.queryHelper.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list moments: %w", r.errorMapper.MapError(err))
	}
	defer rows.Close()

	moments := make([]persistence.Moment, 0)
	for rows.Next() {
		moment, err := scanMoment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan moment: %w", err)
		}
		moments = append(moments, moment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate moments: %w", r.errorMapper.MapError(err))
	}
	return moments, nil
}

func scanMoment(row rowScanner) (persistence.Moment, error) {
	var (
		moment               persistence.Moment
		message              sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&moment.ID, &moment.ArtistID, &moment.CategoryID, &moment.Date, &moment.StartTime, &moment.EndTime,
		&moment.Location, &message, &createdAt, &updatedAt,
	); err != nil {
		return persistence.Moment{}, err
	}
	moment.Message = stringPtr(message)

	var err error
	if moment.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Moment{}, err
	}
	if moment.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Moment{}, err
	}
	return moment, nil
}
