package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/artist-booking/internal/persistence"
)

// CategoryFilter narrows category listings.
type CategoryFilter struct {
	Type   string
	Offset int
	Limit  int
}

// CategoryRepository captures the persistence operations needed by the service.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category Category) (Category, error)
	GetCategory(ctx context.Context, id string) (Category, error)
	UpdateCategory(ctx context.Context, category Category) (Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context, filter CategoryFilter) ([]Category, int, error)
}

// CategoryService manages the categories referenced by artists and moments.
type CategoryService struct {
	categories  CategoryRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
	recorder    Recorder
	maxPageSize int
}

// NewCategoryService constructs a category service with the provided dependencies.
func NewCategoryService(categories CategoryRepository, idGenerator func() string, now func() time.Time, opts ...ServiceOption) *CategoryService {
	options := buildOptions(opts)
	idGenerator, now = defaults(idGenerator, now)
	return &CategoryService{
		categories:  categories,
		idGenerator: idGenerator,
		now:         now,
		logger:      options.logger,
		recorder:    options.recorder,
		maxPageSize: options.maxPageSize,
	}
}

func (s *CategoryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CategoryService", operation, attrs...)
}

// CreateCategory validates input and persists a new category.
func (s *CategoryService) CreateCategory(ctx context.Context, input CategoryInput) (category Category, err error) {
	if s == nil {
		err = fmt.Errorf("CategoryService is nil")
		return
	}
	if s.categories == nil {
		err = fmt.Errorf("category repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateCategory", "category_type", input.Type)
	defer func() {
		s.recorder.RecordOperation("CategoryService", "CreateCategory", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to create category", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("category_id", category.ID).InfoContext(ctx, "category created")
	}()

	vErr := validateCategoryInput(input.Type, input.Name)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	category = Category{
		ID:          s.idGenerator(),
		Type:        strings.TrimSpace(input.Type),
		Name:        strings.TrimSpace(input.Name),
		Description: normalizeOptionalString(input.Description),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	category, err = s.categories.CreateCategory(ctx, category)
	if err != nil {
		err = mapCategoryRepoError(err)
	}
	return
}

// UpdateCategory applies a patch to an existing category.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (category Category, err error) {
	if s == nil {
		err = fmt.Errorf("CategoryService is nil")
		return
	}
	if s.categories == nil {
		err = fmt.Errorf("category repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateCategory", "category_id", id)
	defer func() {
		s.recorder.RecordOperation("CategoryService", "UpdateCategory", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to update category", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "category updated")
	}()

	var existing Category
	existing, err = s.categories.GetCategory(ctx, id)
	if err != nil {
		err = mapCategoryRepoError(err)
		return
	}

	updated := existing
	if patch.Type != nil {
		updated.Type = strings.TrimSpace(*patch.Type)
	}
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		updated.Description = normalizeOptionalString(patch.Description)
	}

	vErr := validateCategoryInput(updated.Type, updated.Name)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	updated.UpdatedAt = s.now()

	category, err = s.categories.UpdateCategory(ctx, updated)
	if err != nil {
		err = mapCategoryRepoError(err)
	}
	return
}

// GetCategory returns a category by ID.
func (s *CategoryService) GetCategory(ctx context.Context, id string) (Category, error) {
	if s == nil {
		return Category{}, fmt.Errorf("CategoryService is nil")
	}
	if s.categories == nil {
		return Category{}, fmt.Errorf("category repository not configured")
	}

	category, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		err = mapCategoryRepoError(err)
		if !errors.Is(err, ErrNotFound) {
			s.loggerWith(ctx, "GetCategory", "category_id", id).
				ErrorContext(ctx, "failed to get category", "error", err, "error_kind", ErrorKind(err))
		}
		return Category{}, err
	}
	return category, nil
}

// ListCategories returns a page of categories, newest first. An empty
// categoryType lists every type.
func (s *CategoryService) ListCategories(ctx context.Context, categoryType string, req PageRequest) (result PageResult[Category], err error) {
	if s == nil {
		err = fmt.Errorf("CategoryService is nil")
		return
	}
	if s.categories == nil {
		err = fmt.Errorf("category repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListCategories", "category_type", categoryType, "page", req.Page, "limit", req.Limit)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list categories", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "categories listed", "count", len(result.Items), "total", result.Total)
	}()

	vErr := validatePage(req, s.maxPageSize)
	categoryType = strings.TrimSpace(categoryType)
	if categoryType != "" && !isCategoryType(categoryType) {
		vErr.add("type", "type must be one of artist, moment")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	categories, total, listErr := s.categories.ListCategories(ctx, CategoryFilter{
		Type:   categoryType,
		Offset: req.offset(),
		Limit:  req.Limit,
	})
	if listErr != nil {
		err = mapCategoryRepoError(listErr)
		return
	}
	result = newPageResult(categories, total, req)
	return
}

// DeleteCategory removes a category that no artist or moment references.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("CategoryService is nil")
	}
	if s.categories == nil {
		return fmt.Errorf("category repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteCategory", "category_id", id)

	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		err = mapCategoryRepoError(err)
		s.recorder.RecordOperation("CategoryService", "DeleteCategory", outcome(err))
		logger.ErrorContext(ctx, "failed to delete category", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.recorder.RecordOperation("CategoryService", "DeleteCategory", outcome(nil))
	logger.InfoContext(ctx, "category deleted")
	return nil
}

func validateCategoryInput(categoryType, name string) *ValidationError {
	vErr := &ValidationError{}
	if !isCategoryType(strings.TrimSpace(categoryType)) {
		vErr.add("type", "type must be one of artist, moment")
	}
	if strings.TrimSpace(name) == "" {
		vErr.add("name", "name is required")
	}
	return vErr
}

func isCategoryType(value string) bool {
	return value == CategoryTypeArtist || value == CategoryTypeMoment
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapCategoryRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return fmt.Errorf("category is referenced by artists or moments: %w", ErrConflict)
	case errors.Is(err, persistence.ErrConstraintViolation):
		return newValidationError("type", "type must be one of artist, moment")
	}
	return err
}
