package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/artist-booking/internal/persistence"
	"github.com/example/artist-booking/internal/scheduler"
)

// MomentRepository captures the persistence operations needed for moments.
type MomentRepository interface {
	MomentReader
	CreateMoment(ctx context.Context, moment Moment) (Moment, error)
	GetMoment(ctx context.Context, id string) (Moment, error)
	UpdateMoment(ctx context.Context, moment Moment) (Moment, error)
	DeleteMoment(ctx context.Context, id string) error
	ListMoments(ctx context.Context, offset, limit int) ([]Moment, int, error)
}

// MomentService manages confirmed bookings.
type MomentService struct {
	moments     MomentRepository
	artists     ArtistLookup
	categories  CategoryLookup
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
	recorder    Recorder
	publisher   EventPublisher
	maxPageSize int
}

// NewMomentService constructs a moment service with the provided dependencies.
func NewMomentService(moments MomentRepository, artists ArtistLookup, categories CategoryLookup, idGenerator func() string, now func() time.Time, opts ...ServiceOption) *MomentService {
	options := buildOptions(opts)
	idGenerator, now = defaults(idGenerator, now)
	return &MomentService{
		moments:     moments,
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

func (s *MomentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MomentService", operation, attrs...)
}

// CreateMoment validates the date and times, resolves the category and the
// artist, and persists the booking. Overlaps with the artist's other moments
// are returned as warnings and do not block the write.
func (s *MomentService) CreateMoment(ctx context.Context, input MomentInput) (result MomentResult, err error) {
	if s == nil {
		err = fmt.Errorf("MomentService is nil")
		return
	}
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CreateMoment", "artist_id", input.ArtistID, "category_id", input.CategoryID)
	defer func() {
		s.recorder.RecordOperation("MomentService", "CreateMoment", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to create moment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("moment_id", result.Moment.ID, "warnings", len(result.Warnings)).InfoContext(ctx, "moment created")
	}()

	candidate := Moment{
		ArtistID:   strings.TrimSpace(input.ArtistID),
		CategoryID: strings.TrimSpace(input.CategoryID),
		Date:       strings.TrimSpace(input.Date),
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		Location:   strings.TrimSpace(input.Location),
		Message:    normalizeOptionalString(input.Message),
	}

	interval, vErr := normalizeMoment(&candidate)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.attachRelations(ctx, &candidate); err != nil {
		return
	}

	var warnings []MomentOverlap
	warnings, err = s.detectOverlaps(ctx, candidate.ArtistID, "", interval)
	if err != nil {
		return
	}

	createdAt := s.now()
	candidate.ID = s.idGenerator()
	candidate.CreatedAt = createdAt
	candidate.UpdatedAt = createdAt

	var persisted Moment
	persisted, err = s.moments.CreateMoment(ctx, stripRelations(candidate))
	if err != nil {
		err = mapMomentRepoError(err)
		return
	}
	persisted.Artist, persisted.Category = candidate.Artist, candidate.Category

	result = MomentResult{Moment: persisted, Warnings: warnings}
	s.publishMoment(ctx, logger, EventMomentCreated, persisted)
	return
}

// UpdateMoment merges a patch into an existing moment. Supplied dates and
// times are re-validated and supplied references re-resolved.
func (s *MomentService) UpdateMoment(ctx context.Context, id string, patch MomentPatch) (result MomentResult, err error) {
	if s == nil {
		err = fmt.Errorf("MomentService is nil")
		return
	}
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "UpdateMoment", "moment_id", id)
	defer func() {
		s.recorder.RecordOperation("MomentService", "UpdateMoment", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to update moment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("warnings", len(result.Warnings)).InfoContext(ctx, "moment updated")
	}()

	var existing Moment
	existing, err = s.moments.GetMoment(ctx, id)
	if err != nil {
		err = mapMomentRepoError(err)
		return
	}

	updated := existing
	if patch.ArtistID != nil {
		updated.ArtistID = strings.TrimSpace(*patch.ArtistID)
	}
	if patch.CategoryID != nil {
		updated.CategoryID = strings.TrimSpace(*patch.CategoryID)
	}
	if patch.Date != nil {
		updated.Date = strings.TrimSpace(*patch.Date)
	}
	if patch.StartTime != nil {
		updated.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		updated.EndTime = *patch.EndTime
	}
	if patch.Location != nil {
		updated.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.Message != nil {
		updated.Message = normalizeOptionalString(patch.Message)
	}

	interval, vErr := normalizeMoment(&updated)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.attachRelations(ctx, &updated); err != nil {
		return
	}

	var warnings []MomentOverlap
	warnings, err = s.detectOverlaps(ctx, updated.ArtistID, updated.ID, interval)
	if err != nil {
		return
	}

	updated.UpdatedAt = s.now()
	var persisted Moment
	persisted, err = s.moments.UpdateMoment(ctx, stripRelations(updated))
	if err != nil {
		err = mapMomentRepoError(err)
		return
	}
	persisted.Artist, persisted.Category = updated.Artist, updated.Category

	result = MomentResult{Moment: persisted, Warnings: warnings}
	s.publishMoment(ctx, logger, EventMomentUpdated, persisted)
	return
}

// GetMoment returns a moment with its artist and category.
func (s *MomentService) GetMoment(ctx context.Context, id string) (Moment, error) {
	if s == nil {
		return Moment{}, fmt.Errorf("MomentService is nil")
	}
	if err := s.ready(); err != nil {
		return Moment{}, err
	}

	moment, err := s.moments.GetMoment(ctx, id)
	if err != nil {
		return Moment{}, mapMomentRepoError(err)
	}
	if err := s.attachRelations(ctx, &moment); err != nil {
		return Moment{}, err
	}
	return moment, nil
}

// ListMoments returns a page of moments, latest date and start time first.
func (s *MomentService) ListMoments(ctx context.Context, req PageRequest) (result PageResult[Moment], err error) {
	if s == nil {
		err = fmt.Errorf("MomentService is nil")
		return
	}
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ListMoments", "page", req.Page, "limit", req.Limit)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list moments", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if vErr := validatePage(req, s.maxPageSize); vErr.HasErrors() {
		err = vErr
		return
	}

	moments, total, listErr := s.moments.ListMoments(ctx, req.offset(), req.Limit)
	if listErr != nil {
		err = mapMomentRepoError(listErr)
		return
	}

	artists := make(map[string]*Artist)
	categories := make(map[string]*Category)
	for i := range moments {
		if err = s.attachCached(ctx, &moments[i], artists, categories); err != nil {
			return
		}
	}

	result = newPageResult(moments, total, req)
	return
}

// DeleteMoment removes a moment and returns it with its relations.
func (s *MomentService) DeleteMoment(ctx context.Context, id string) (moment Moment, err error) {
	if s == nil {
		err = fmt.Errorf("MomentService is nil")
		return
	}
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "DeleteMoment", "moment_id", id)
	defer func() {
		s.recorder.RecordOperation("MomentService", "DeleteMoment", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete moment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "moment deleted")
	}()

	moment, err = s.GetMoment(ctx, id)
	if err != nil {
		return
	}
	if err = s.moments.DeleteMoment(ctx, id); err != nil {
		err = mapMomentRepoError(err)
		return
	}

	s.publishMoment(ctx, logger, EventMomentDeleted, moment)
	return
}

func (s *MomentService) ready() error {
	if s.moments == nil || s.artists == nil || s.categories == nil {
		return fmt.Errorf("moment repositories not configured")
	}
	return nil
}

// attachRelations resolves the category first and then the artist.
func (s *MomentService) attachRelations(ctx context.Context, moment *Moment) error {
	category, err := s.categories.GetCategory(ctx, moment.CategoryID)
	if err != nil {
		return mapLookupError(err, "category")
	}
	artist, err := s.artists.GetArtist(ctx, moment.ArtistID)
	if err != nil {
		return mapLookupError(err, "artist")
	}
	moment.Category = &category
	moment.Artist = &artist
	return nil
}

func (s *MomentService) attachCached(ctx context.Context, moment *Moment, artists map[string]*Artist, categories map[string]*Category) error {
	category, ok := categories[moment.CategoryID]
	if !ok {
		c, err := s.categories.GetCategory(ctx, moment.CategoryID)
		if err != nil {
			return mapLookupError(err, "category")
		}
		category = &c
		categories[moment.CategoryID] = category
	}
	artist, ok := artists[moment.ArtistID]
	if !ok {
		a, err := s.artists.GetArtist(ctx, moment.ArtistID)
		if err != nil {
			return mapLookupError(err, "artist")
		}
		artist = &a
		artists[moment.ArtistID] = artist
	}
	moment.Category = category
	moment.Artist = artist
	return nil
}

func (s *MomentService) detectOverlaps(ctx context.Context, artistID, selfID string, interval scheduler.Interval) ([]MomentOverlap, error) {
	moments, err := s.moments.ListMomentsByArtist(ctx, artistID)
	if err != nil {
		return nil, mapMomentRepoError(err)
	}

	existing := make([]scheduler.Entry, 0, len(moments))
	for _, moment := range moments {
		other, err := scheduler.BookingInterval(moment.Date, moment.StartTime, moment.EndTime)
		if err != nil {
			continue
		}
		existing = append(existing, scheduler.Entry{ID: moment.ID, Interval: other})
	}

	conflicts := scheduler.DetectConflicts(existing, scheduler.Entry{ID: selfID, Interval: interval}, scheduler.ConflictTypeBooking)
	if len(conflicts) == 0 {
		return nil, nil
	}
	warnings := make([]MomentOverlap, 0, len(conflicts))
	for _, conflict := range conflicts {
		warnings = append(warnings, MomentOverlap{
			MomentID: conflict.WithID,
			Start:    conflict.Interval.Start,
			End:      conflict.Interval.End,
		})
	}
	return warnings, nil
}

func (s *MomentService) publishMoment(ctx context.Context, logger *slog.Logger, eventType string, moment Moment) {
	publish(ctx, s.publisher, logger, Event{
		Type:       eventType,
		EntityID:   moment.ID,
		ArtistID:   moment.ArtistID,
		OccurredAt: s.now(),
	})
}

// normalizeMoment validates the moment's scalar fields in place, rewriting
// the times into HH:MM form, and returns the booking interval. No lookups
// happen here.
func normalizeMoment(moment *Moment) (scheduler.Interval, *ValidationError) {
	vErr := &ValidationError{}

	if _, err := scheduler.ParseDate(moment.Date); err != nil {
		vErr.add("date", "date must be a valid calendar date in YYYY-MM-DD format")
	}
	start, err := scheduler.NormalizeClock(moment.StartTime)
	if err != nil {
		vErr.add("start_time", "start_time must be HH:MM in 24-hour format")
	}
	end, err := scheduler.NormalizeClock(moment.EndTime)
	if err != nil {
		vErr.add("end_time", "end_time must be HH:MM in 24-hour format")
	}
	if moment.ArtistID == "" {
		vErr.add("artist_id", "artist_id is required")
	}
	if moment.CategoryID == "" {
		vErr.add("category_id", "category_id is required")
	}
	if moment.Location == "" {
		vErr.add("location", "location is required")
	}
	if vErr.HasErrors() {
		return scheduler.Interval{}, vErr
	}

	moment.StartTime, moment.EndTime = start, end
	interval, err := scheduler.BookingInterval(moment.Date, start, end)
	if err != nil {
		if errors.Is(err, scheduler.ErrEmptyInterval) {
			vErr.add("end_time", "end_time must differ from start_time")
		} else {
			vErr.add("date", err.Error())
		}
		return scheduler.Interval{}, vErr
	}
	return interval, vErr
}

func stripRelations(moment Moment) Moment {
	moment.Artist = nil
	moment.Category = nil
	return moment
}

func mapMomentRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return fmt.Errorf("artist or category not found: %w", ErrNotFound)
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	}
	return err
}
