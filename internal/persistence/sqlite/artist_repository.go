package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/artist-booking/internal/persistence"
)

const artistColumns = `id, name, tags, rating, price, location, category_id, image_url, created_at, updated_at`

// ArtistRepository implements persistence.ArtistRepository for SQLite.
type ArtistRepository struct {
	pool        *ConnectionPool
	queryHelper *QueryHelper
	errorMapper *ErrorMapper
	retryHelper *RetryHelper
}

// NewArtistRepository creates a new SQLite artist repository.
func NewArtistRepository(pool *ConnectionPool) *ArtistRepository {
	return &ArtistRepository{
		pool:        pool,
		queryHelper: NewQueryHelper(pool),
		errorMapper: NewErrorMapper(),
		retryHelper: NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateArtist creates a new artist.
func (r *ArtistRepository) CreateArtist(ctx context.Context, artist persistence.Artist) error {
	tags, err := encodeTags(artist.Tags)
	if err != nil {
		return err
	}
	return r.retryHelper.WithRetry(ctx, func() error {
		_, err := r.pool.DB().ExecContext(ctx, `
			INSERT INTO artists (`+artistColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			artist.ID, artist.Name, tags, artist.Rating, artist.Price, artist.Location,
			artist.CategoryID, nullableString(artist.ImageURL),
			formatTime(artist.CreatedAt), formatTime(artist.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to create artist: %w", r.errorMapper.MapError(err))
		}
		return nil
	})
}

// UpdateArtist updates an existing artist. CreatedAt is preserved.
func (r *ArtistRepository) UpdateArtist(ctx context.Context, artist persistence.Artist) error {
	tags, err := encodeTags(artist.Tags)
	if err != nil {
		return err
	}
	return r.retryHelper.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, `
			UPDATE artists
			SET name = ?, tags = ?, rating = ?, price = ?, location = ?, category_id = ?, image_url = ?, updated_at = ?
			WHERE id = ?`,
			artist.Name, tags, artist.Rating, artist.Price, artist.Location,
			artist.CategoryID, nullableString(artist.ImageURL), formatTime(artist.UpdatedAt),
			artist.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update artist: %w", r.errorMapper.MapError(err))
		}
		return requireAffected(result)
	})
}

// GetArtist retrieves an artist by ID.
func (r *ArtistRepository) GetArtist(ctx context.Context, id string) (persistence.Artist, error) {
	row := r.queryHelper.QueryRow(ctx, `SELECT `+artistColumns+` FROM artists WHERE id = ?`, id)
	artist, err := scanArtist(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Artist{}, persistence.ErrNotFound
		}
		return persistence.Artist{}, fmt.Errorf("failed to get artist: %w", r.errorMapper.MapError(err))
	}
	return artist, nil
}

// ListArtists lists artists newest first.
func (r *ArtistRepository) ListArtists(ctx context.Context, page persistence.Page) ([]persistence.Artist, int, error) {
	var total int
	if err := r.queryHelper.QueryRow(ctx, `SELECT COUNT(*) FROM artists`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count artists: %w", r.errorMapper.MapError(err))
	}

	limit, args := limitClause(page)
	rows, err := r.queryHelper.Query(ctx,
		`SELECT `+artistColumns+` FROM artists ORDER BY created_at DESC, id ASC`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list artists: %w", r.errorMapper.MapError(err))
	}
	defer rows.Close()

	artists := make([]persistence.Artist, 0)
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, artist)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate artists: %w", r.errorMapper.MapError(err))
	}
	return artists, total, nil
}

// DeleteArtist deletes an artist together with its slots and moments in one
// transaction.
func (r *ArtistRepository) DeleteArtist(ctx context.Context, id string) error {
	return r.retryHelper.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := r.queryHelper.ExecTx(ctx, tx, `DELETE FROM availability_slots WHERE artist_id = ?`, id); err != nil {
				return fmt.Errorf("failed to delete artist slots: %w", r.errorMapper.MapError(err))
			}
			if _, err := r.queryHelper.ExecTx(ctx, tx, `DELETE FROM moments WHERE artist_id = ?`, id); err != nil {
				return fmt.Errorf("failed to delete artist moments: %w", r.errorMapper.MapError(err))
			}
			result, err := r.queryHelper.ExecTx(ctx, tx, `DELETE FROM artists WHERE id = ?`, id)
			if err != nil {
				return fmt.Errorf("failed to delete artist: %w", r.errorMapper.MapError(err))
			}
			return requireAffected(result)
		})
	})
}

func scanArtist(row rowScanner) (persistence.Artist, error) {
	var (
		artist               persistence.Artist
		tags                 string
		imageURL             sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&artist.ID, &artist.Name, &tags, &artist.Rating, &artist.Price, &artist.Location,
		&artist.CategoryID, &imageURL, &createdAt, &updatedAt,
	); err != nil {
		return persistence.Artist{}, err
	}

	if err := json.Unmarshal([]byte(tags), &artist.Tags); err != nil {
		return persistence.Artist{}, fmt.Errorf("decode artist tags: %w", err)
	}
	artist.ImageURL = stringPtr(imageURL)

	var err error
	if artist.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Artist{}, err
	}
	if artist.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Artist{}, err
	}
	return artist, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode artist tags: %w", err)
	}
	return string(encoded), nil
}
