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

// SlotRepository captures the persistence operations needed for availability
// slots. CreateSlot and UpdateSlot must check for overlapping slots of the
// same artist and write in one atomic step.
type SlotRepository interface {
	SlotReader
	CreateSlot(ctx context.Context, slot AvailabilitySlot) (AvailabilitySlot, error)
	GetSlot(ctx context.Context, id string) (AvailabilitySlot, error)
	UpdateSlot(ctx context.Context, slot AvailabilitySlot) (AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, id string) error
	ListSlots(ctx context.Context, offset, limit int) ([]AvailabilitySlot, int, error)
}

// FreeSlotResolver computes an artist's free slots.
type FreeSlotResolver interface {
	FreeSlots(ctx context.Context, artistID string, req PageRequest) (PageResult[AvailabilitySlot], error)
}

// AvailabilityService manages the availability ledger.
type AvailabilityService struct {
	slots       SlotRepository
	artists     ArtistLookup
	resolver    FreeSlotResolver
	locks       *keyedMutex
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
	recorder    Recorder
	publisher   EventPublisher
	maxPageSize int
}

// NewAvailabilityService constructs an availability service. resolver answers
// per-artist listings.
func NewAvailabilityService(slots SlotRepository, artists ArtistLookup, resolver FreeSlotResolver, idGenerator func() string, now func() time.Time, opts ...ServiceOption) *AvailabilityService {
	options := buildOptions(opts)
	idGenerator, now = defaults(idGenerator, now)
	return &AvailabilityService{
		slots:       slots,
		artists:     artists,
		resolver:    resolver,
		locks:       newKeyedMutex(),
		idGenerator: idGenerator,
		now:         now,
		logger:      options.logger,
		recorder:    options.recorder,
		publisher:   options.publisher,
		maxPageSize: options.maxPageSize,
	}
}

func (s *AvailabilityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AvailabilityService", operation, attrs...)
}

// CreateSlot opens a new slot for an artist. It fails with ErrNotFound when
// the artist is unknown and ErrConflict when the slot overlaps another slot of
// the same artist.
func (s *AvailabilityService) CreateSlot(ctx context.Context, input SlotInput) (slot AvailabilitySlot, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}
	if s.slots == nil || s.artists == nil {
		err = fmt.Errorf("availability repositories not configured")
		return
	}

	artistID := strings.TrimSpace(input.ArtistID)
	logger := s.loggerWith(ctx, "CreateSlot", "artist_id", artistID)
	defer func() {
		s.recorder.RecordOperation("AvailabilityService", "CreateSlot", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to create slot", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("slot_id", slot.ID).InfoContext(ctx, "slot created")
	}()

	if vErr := validateSlot(artistID, input.Start, input.End); vErr.HasErrors() {
		err = vErr
		return
	}

	unlock := s.locks.Lock(artistID)
	defer unlock()

	artist, lookupErr := s.artists.GetArtist(ctx, artistID)
	if lookupErr != nil {
		err = mapLookupError(lookupErr, "artist")
		return
	}

	createdAt := s.now()
	candidate := AvailabilitySlot{
		ID:        s.idGenerator(),
		ArtistID:  artistID,
		Start:     input.Start.UTC(),
		End:       input.End.UTC(),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	slot, err = s.slots.CreateSlot(ctx, candidate)
	if err != nil {
		err = s.mapWriteError(err)
		return
	}
	slot.Artist = &artist

	s.publishSlot(ctx, logger, EventSlotCreated, slot)
	return
}

// ListSlots returns a page of every slot ordered by start.
func (s *AvailabilityService) ListSlots(ctx context.Context, req PageRequest) (result PageResult[AvailabilitySlot], err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}
	if s.slots == nil || s.artists == nil {
		err = fmt.Errorf("availability repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListSlots", "page", req.Page, "limit", req.Limit)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list slots", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if vErr := validatePage(req, s.maxPageSize); vErr.HasErrors() {
		err = vErr
		return
	}

	slots, total, listErr := s.slots.ListSlots(ctx, req.offset(), req.Limit)
	if listErr != nil {
		err = mapSlotRepoError(listErr)
		return
	}
	artists := make(map[string]*Artist)
	for i := range slots {
		if err = s.attachArtist(ctx, &slots[i], artists); err != nil {
			return
		}
	}
	result = newPageResult(slots, total, req)
	return
}

// ListSlotsByArtist returns the artist's free slots.
func (s *AvailabilityService) ListSlotsByArtist(ctx context.Context, artistID string, req PageRequest) (PageResult[AvailabilitySlot], error) {
	if s == nil {
		return PageResult[AvailabilitySlot]{}, fmt.Errorf("AvailabilityService is nil")
	}
	if s.resolver == nil {
		return PageResult[AvailabilitySlot]{}, fmt.Errorf("free slot resolver not configured")
	}
	return s.resolver.FreeSlots(ctx, artistID, req)
}

// GetSlot returns a slot by ID.
func (s *AvailabilityService) GetSlot(ctx context.Context, id string) (AvailabilitySlot, error) {
	if s == nil {
		return AvailabilitySlot{}, fmt.Errorf("AvailabilityService is nil")
	}
	if s.slots == nil || s.artists == nil {
		return AvailabilitySlot{}, fmt.Errorf("availability repositories not configured")
	}

	slot, err := s.slots.GetSlot(ctx, id)
	if err != nil {
		return AvailabilitySlot{}, mapSlotRepoError(err)
	}
	if err := s.attachArtist(ctx, &slot, nil); err != nil {
		return AvailabilitySlot{}, err
	}
	return slot, nil
}

// UpdateSlot applies a patch to a slot. The result is checked against the
// artist's other slots exactly as on creation.
func (s *AvailabilityService) UpdateSlot(ctx context.Context, id string, patch SlotPatch) (slot AvailabilitySlot, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}
	if s.slots == nil || s.artists == nil {
		err = fmt.Errorf("availability repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateSlot", "slot_id", id)
	defer func() {
		s.recorder.RecordOperation("AvailabilityService", "UpdateSlot", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to update slot", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "slot updated")
	}()

	var existing AvailabilitySlot
	existing, err = s.slots.GetSlot(ctx, id)
	if err != nil {
		err = mapSlotRepoError(err)
		return
	}

	updated := existing
	if patch.ArtistID != nil {
		updated.ArtistID = strings.TrimSpace(*patch.ArtistID)
	}
	if patch.Start != nil {
		updated.Start = patch.Start.UTC()
	}
	if patch.End != nil {
		updated.End = patch.End.UTC()
	}
	if vErr := validateSlot(updated.ArtistID, updated.Start, updated.End); vErr.HasErrors() {
		err = vErr
		return
	}

	unlock := s.locks.LockPair(existing.ArtistID, updated.ArtistID)
	defer unlock()

	artist, lookupErr := s.artists.GetArtist(ctx, updated.ArtistID)
	if lookupErr != nil {
		err = mapLookupError(lookupErr, "artist")
		return
	}

	updated.UpdatedAt = s.now()
	slot, err = s.slots.UpdateSlot(ctx, updated)
	if err != nil {
		err = s.mapWriteError(err)
		return
	}
	slot.Artist = &artist

	s.publishSlot(ctx, logger, EventSlotUpdated, slot)
	return
}

// DeleteSlot removes a slot by ID.
func (s *AvailabilityService) DeleteSlot(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("AvailabilityService is nil")
	}
	if s.slots == nil {
		return fmt.Errorf("availability repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteSlot", "slot_id", id)

	existing, err := s.slots.GetSlot(ctx, id)
	if err == nil {
		err = s.slots.DeleteSlot(ctx, id)
	}
	if err != nil {
		err = mapSlotRepoError(err)
		s.recorder.RecordOperation("AvailabilityService", "DeleteSlot", outcome(err))
		logger.ErrorContext(ctx, "failed to delete slot", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.recorder.RecordOperation("AvailabilityService", "DeleteSlot", outcome(nil))
	logger.InfoContext(ctx, "slot deleted")
	s.publishSlot(ctx, logger, EventSlotDeleted, existing)
	return nil
}

// attachArtist loads the slot's artist. cache, when non-nil, is shared across
// one listing so each artist is read once.
func (s *AvailabilityService) attachArtist(ctx context.Context, slot *AvailabilitySlot, cache map[string]*Artist) error {
	if artist, ok := cache[slot.ArtistID]; ok {
		slot.Artist = artist
		return nil
	}
	artist, err := s.artists.GetArtist(ctx, slot.ArtistID)
	if err != nil {
		return mapLookupError(err, "artist")
	}
	slot.Artist = &artist
	if cache != nil {
		cache[slot.ArtistID] = &artist
	}
	return nil
}

func (s *AvailabilityService) publishSlot(ctx context.Context, logger *slog.Logger, eventType string, slot AvailabilitySlot) {
	publish(ctx, s.publisher, logger, Event{
		Type:       eventType,
		EntityID:   slot.ID,
		ArtistID:   slot.ArtistID,
		OccurredAt: s.now(),
	})
}

func (s *AvailabilityService) mapWriteError(err error) error {
	mapped := mapSlotRepoError(err)
	if errors.Is(mapped, ErrConflict) {
		s.recorder.RecordSlotConflict()
	}
	return mapped
}

func validateSlot(artistID string, start, end time.Time) *ValidationError {
	vErr := &ValidationError{}
	if artistID == "" {
		vErr.add("artist_id", "artist_id is required")
	}
	if start.IsZero() {
		vErr.add("start", "start is required")
	}
	if end.IsZero() {
		vErr.add("end", "end is required")
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		vErr.add("end", "end must be after start")
	}
	return vErr
}

func mapSlotRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrOverlap):
		return fmt.Errorf("slot overlaps an existing slot for this artist: %w", ErrConflict)
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return fmt.Errorf("artist not found: %w", ErrNotFound)
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrConstraintViolation):
		return newValidationError("end", "end must be after start")
	}
	return err
}
