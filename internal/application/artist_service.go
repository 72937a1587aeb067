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

// ArtistRepository captures the persistence operations needed for artists.
type ArtistRepository interface {
	CreateArtist(ctx context.Context, artist Artist) (Artist, error)
	GetArtist(ctx context.Context, id string) (Artist, error)
	UpdateArtist(ctx context.Context, artist Artist) (Artist, error)
	DeleteArtist(ctx context.Context, id string) error
	ListArtists(ctx context.Context, offset, limit int) ([]Artist, int, error)
}

// CategoryLookup resolves categories referenced by other records.
type CategoryLookup interface {
	GetCategory(ctx context.Context, id string) (Category, error)
}

// ArtistService manages the artist directory.
type ArtistService struct {
	artists     ArtistRepository
	categories  CategoryLookup
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
	recorder    Recorder
	publisher   EventPublisher
	maxPageSize int
}

// NewArtistService constructs an artist service with the provided dependencies.
func NewArtistService(artists ArtistRepository, categories CategoryLookup, idGenerator func() string, now func() time.Time, opts ...ServiceOption) *ArtistService {
	options := buildOptions(opts)
	idGenerator, now = defaults(idGenerator, now)
	return &ArtistService{
		artists:     artists,
		categories:  categories,
		idGenerator: idGenerator,
		now:         now,
		logger:      options.logger,
		recorder:    options.recorder,
		publisher:   options.publisher,
		maxPageSize: options.maxPageSize,
	}
}

func (s *ArtistService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ArtistService", operation, attrs...)
}

// CreateArtist validates input, resolves the category and persists a new artist.
func (s *ArtistService) CreateArtist(ctx context.Context, input ArtistInput) (artist Artist, err error) {
	if s == nil {
		err = fmt.Errorf("ArtistService is nil")
		return
	}
	if s.artists == nil || s.categories == nil {
		err = fmt.Errorf("artist repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateArtist", "category_id", input.CategoryID)
	defer func() {
		s.recorder.RecordOperation("ArtistService", "CreateArtist", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to create artist", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("artist_id", artist.ID).InfoContext(ctx, "artist created")
	}()

	candidate := Artist{
		Name:       strings.TrimSpace(input.Name),
		Tags:       normalizeTags(input.Tags),
		Rating:     input.Rating,
		Price:      strings.TrimSpace(input.Price),
		Location:   strings.TrimSpace(input.Location),
		CategoryID: strings.TrimSpace(input.CategoryID),
		ImageURL:   normalizeOptionalString(input.ImageURL),
	}
	if vErr := validateArtist(candidate); vErr.HasErrors() {
		err = vErr
		return
	}

	var category Category
	category, err = s.categories.GetCategory(ctx, candidate.CategoryID)
	if err != nil {
		err = mapLookupError(err, "category")
		return
	}

	createdAt := s.now()
	candidate.ID = s.idGenerator()
	candidate.CreatedAt = createdAt
	candidate.UpdatedAt = createdAt

	artist, err = s.artists.CreateArtist(ctx, candidate)
	if err != nil {
		err = mapArtistRepoError(err)
		return
	}
	artist.Category = &category
	return
}

// UpdateArtist applies a patch to an existing artist.
func (s *ArtistService) UpdateArtist(ctx context.Context, id string, patch ArtistPatch) (artist Artist, err error) {
	if s == nil {
		err = fmt.Errorf("ArtistService is nil")
		return
	}
	if s.artists == nil || s.categories == nil {
		err = fmt.Errorf("artist repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateArtist", "artist_id", id)
	defer func() {
		s.recorder.RecordOperation("ArtistService", "UpdateArtist", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to update artist", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "artist updated")
	}()

	var existing Artist
	existing, err = s.artists.GetArtist(ctx, id)
	if err != nil {
		err = mapArtistRepoError(err)
		return
	}

	updated := existing
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Tags != nil {
		updated.Tags = normalizeTags(*patch.Tags)
	}
	if patch.Rating != nil {
		updated.Rating = *patch.Rating
	}
	if patch.Price != nil {
		updated.Price = strings.TrimSpace(*patch.Price)
	}
	if patch.Location != nil {
		updated.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.CategoryID != nil {
		updated.CategoryID = strings.TrimSpace(*patch.CategoryID)
	}
	if patch.ImageURL != nil {
		updated.ImageURL = normalizeOptionalString(patch.ImageURL)
	}
	if vErr := validateArtist(updated); vErr.HasErrors() {
		err = vErr
		return
	}

	var category Category
	category, err = s.categories.GetCategory(ctx, updated.CategoryID)
	if err != nil {
		err = mapLookupError(err, "category")
		return
	}

	updated.Category = nil
	updated.UpdatedAt = s.now()
	artist, err = s.artists.UpdateArtist(ctx, updated)
	if err != nil {
		err = mapArtistRepoError(err)
		return
	}
	artist.Category = &category
	return
}

// GetArtist returns an artist with its category.
func (s *ArtistService) GetArtist(ctx context.Context, id string) (Artist, error) {
	if s == nil {
		return Artist{}, fmt.Errorf("ArtistService is nil")
	}
	if s.artists == nil {
		return Artist{}, fmt.Errorf("artist repository not configured")
	}

	artist, err := s.artists.GetArtist(ctx, id)
	if err != nil {
		return Artist{}, mapArtistRepoError(err)
	}
	if err := s.attachCategory(ctx, &artist); err != nil {
		s.loggerWith(ctx, "GetArtist", "artist_id", id).
			ErrorContext(ctx, "failed to load artist category", "error", err, "error_kind", ErrorKind(err))
		return Artist{}, err
	}
	return artist, nil
}

// ListArtists returns a page of artists, newest first.
func (s *ArtistService) ListArtists(ctx context.Context, req PageRequest) (result PageResult[Artist], err error) {
	if s == nil {
		err = fmt.Errorf("ArtistService is nil")
		return
	}
	if s.artists == nil {
		err = fmt.Errorf("artist repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListArtists", "page", req.Page, "limit", req.Limit)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list artists", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if vErr := validatePage(req, s.maxPageSize); vErr.HasErrors() {
		err = vErr
		return
	}

	artists, total, listErr := s.artists.ListArtists(ctx, req.offset(), req.Limit)
	if listErr != nil {
		err = mapArtistRepoError(listErr)
		return
	}

	cache := make(map[string]*Category)
	for i := range artists {
		if cached, ok := cache[artists[i].CategoryID]; ok {
			artists[i].Category = cached
			continue
		}
		if err = s.attachCategory(ctx, &artists[i]); err != nil {
			return
		}
		cache[artists[i].CategoryID] = artists[i].Category
	}

	result = newPageResult(artists, total, req)
	return
}

// DeleteArtist removes an artist together with its slots and moments.
func (s *ArtistService) DeleteArtist(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("ArtistService is nil")
	}
	if s.artists == nil {
		return fmt.Errorf("artist repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteArtist", "artist_id", id)

	if err := s.artists.DeleteArtist(ctx, id); err != nil {
		err = mapArtistRepoError(err)
		s.recorder.RecordOperation("ArtistService", "DeleteArtist", outcome(err))
		logger.ErrorContext(ctx, "failed to delete artist", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.recorder.RecordOperation("ArtistService", "DeleteArtist", outcome(nil))
	logger.InfoContext(ctx, "artist deleted")
	publish(ctx, s.publisher, logger, Event{
		Type:       EventArtistDeleted,
		EntityID:   id,
		ArtistID:   id,
		OccurredAt: s.now(),
	})
	return nil
}

func (s *ArtistService) attachCategory(ctx context.Context, artist *Artist) error {
	if s.categories == nil {
		return nil
	}
	category, err := s.categories.GetCategory(ctx, artist.CategoryID)
	if err != nil {
		return mapLookupError(err, "category")
	}
	artist.Category = &category
	return nil
}

func validateArtist(artist Artist) *ValidationError {
	vErr := &ValidationError{}
	if artist.Name == "" {
		vErr.add("name", "name is required")
	}
	if artist.Price == "" {
		vErr.add("price", "price is required")
	}
	if artist.Location == "" {
		vErr.add("location", "location is required")
	}
	if artist.CategoryID == "" {
		vErr.add("category_id", "category_id is required")
	}
	if artist.Rating < 0 || artist.Rating > 5 {
		vErr.add("rating", "rating must be between 0 and 5")
	}
	return vErr
}

func normalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}

// publish delivers an event after a committed write. Failures are logged and
// never returned to the caller.
func publish(ctx context.Context, publisher EventPublisher, logger *slog.Logger, event Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "event_type", event.Type, "entity_id", event.EntityID, "error", err)
	}
}

// mapLookupError converts a failed reference lookup. A missing reference is
// reported as ErrNotFound naming the entity.
func mapLookupError(err error, entity string) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("%s not found: %w", entity, ErrNotFound)
	}
	return err
}

func mapArtistRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return fmt.Errorf("category not found: %w", ErrNotFound)
	case errors.Is(err, persistence.ErrConstraintViolation):
		return newValidationError("rating", "rating must be between 0 and 5")
	}
	return err
}
