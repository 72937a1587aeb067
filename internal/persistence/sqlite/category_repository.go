package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/artist-booking/internal/persistence"
)

const categoryColumns = `id, type, name, description, created_at, updated_at`

// CategoryRepository implements persistence.CategoryRepository for SQLite.
type CategoryRepository struct {
	pool        *ConnectionPool
	queryHelper *QueryHelper
	errorMapper *ErrorMapper
	retryHelper *RetryHelper
}

// NewCategoryRepository creates a new SQLite category repository.
func NewCategoryRepository(pool *ConnectionPool) *CategoryRepository {
	return &CategoryRepository{
		pool:        pool,
		queryHelper: NewQueryHelper(pool),
		errorMapper: NewErrorMapper(),
		retryHelper: NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateCategory creates a new category.
func (r *CategoryRepository) CreateCategory(ctx context.Context, category persistence.Category) error {
	return r.retryHelper.WithRetry(ctx, func() error {
		_, err := r.pool.DB().ExecContext(ctx, `
			INSERT INTO categories (`+categoryColumns+`)
			VALUES (?, ?, ?, ?, ?, ?)`,
			category.ID, category.Type, category.Name, nullableString(category.Description),
			formatTime(category.CreatedAt), formatTime(category.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to create category: %w", r.errorMapper.MapError(err))
		}
		return nil
	})
}

// UpdateCategory updates an existing category. CreatedAt is preserved.
func (r *CategoryRepository) UpdateCategory(ctx context.Context, category persistence.Category) error {
	return r.retryHelper.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, `
			UPDATE categories
			SET type = ?, name = ?, description = ?, updated_at = ?
			WHERE id = ?`,
			category.Type, category.Name, nullableString(category.Description),
			formatTime(category.UpdatedAt), category.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update category: %w", r.errorMapper.MapError(err))
		}
		return requireAffected(result)
	})
}

// GetCategory retrieves a category by ID.
func (r *CategoryRepository) GetCategory(ctx context.Context, id string) (persistence.Category, error) {
	row := r.queryHelper.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Category{}, persistence.ErrNotFound
		}
		return persistence.Category{}, fmt.Errorf("failed to get category: %w", r.errorMapper.MapError(err))
	}
	return category, nil
}

// ListCategories lists categories newest first, optionally filtered by type.
func (r *CategoryRepository) ListCategories(ctx context.Context, filter persistence.CategoryFilter) ([]persistence.Category, int, error) {
	where := ""
	var args []any
	if filter.Type != "" {
		where = " WHERE type = ?"
		args = append(args, filter.Type)
	}

	var total int
	if err := r.queryHelper.QueryRow(ctx, `SELECT COUNT(*) FROM categories`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", r.errorMapper.MapError(err))
	}

	limit, limitArgs := limitClause(filter.Page)
	rows, err := r.queryHelper.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories`+where+` ORDER BY created_at DESC, id ASC`+limit,
		append(args, limitArgs...)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", r.errorMapper.MapError(err))
	}
	defer rows.Close()

	categories := make([]persistence.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate categories: %w", r.errorMapper.MapError(err))
	}
	return categories, total, nil
}

// DeleteCategory deletes a category. Referenced categories are rejected by
// the foreign keys with persistence.ErrForeignKeyViolation.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.retryHelper.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", r.errorMapper.MapError(err))
		}
		return requireAffected(result)
	})
}

func scanCategory(row rowScanner) (persistence.Category, error) {
	var (
		category             persistence.Category
		description          sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&category.ID, &category.Type, &category.Name, &description, &createdAt, &updatedAt); err != nil {
		return persistence.Category{}, err
	}
	category.Description = stringPtr(description)

	var err error
	if category.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Category{}, err
	}
	if category.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Category{}, err
	}
	return category, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
