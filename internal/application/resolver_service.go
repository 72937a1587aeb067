package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/artist-booking/internal/scheduler"
)

// ArtistLookup resolves artists referenced by slots and moments.
type ArtistLookup interface {
	GetArtist(ctx context.Context, id string) (Artist, error)
}

// SlotReader lists an artist's availability slots ordered by start.
type SlotReader interface {
	ListSlotsByArtist(ctx context.Context, artistID string) ([]AvailabilitySlot, error)
}

// MomentReader lists an artist's moments.
type MomentReader interface {
	ListMomentsByArtist(ctx context.Context, artistID string) ([]Moment, error)
}

// ResolverService derives free and booked time for an artist from the
// availability and moment ledgers.
type ResolverService struct {
	artists     ArtistLookup
	slots       SlotReader
	moments     MomentReader
	now         func() time.Time
	logger      *slog.Logger
	recorder    Recorder
	maxPageSize int
}

// NewResolverService constructs a resolver over the supplied readers.
func NewResolverService(artists ArtistLookup, slots SlotReader, moments MomentReader, now func() time.Time, opts ...ServiceOption) *ResolverService {
	options := buildOptions(opts)
	_, now = defaults(nil, now)
	return &ResolverService{
		artists:     artists,
		slots:       slots,
		moments:     moments,
		now:         now,
		logger:      options.logger,
		recorder:    options.recorder,
		maxPageSize: options.maxPageSize,
	}
}

func (s *ResolverService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ResolverService", operation, attrs...)
}

// FreeSlots returns the artist's slots that no moment overlaps. Slots are kept
// or dropped whole. Filtering happens before pagination, so Total and
// TotalPages count free slots only.
func (s *ResolverService) FreeSlots(ctx context.Context, artistID string, req PageRequest) (result PageResult[AvailabilitySlot], err error) {
	if s == nil {
		err = fmt.Errorf("ResolverService is nil")
		return
	}

	logger := s.loggerWith(ctx, "FreeSlots", "artist_id", artistID, "page", req.Page, "limit", req.Limit)
	defer func() {
		s.recorder.RecordOperation("ResolverService", "FreeSlots", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to resolve free slots", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "free slots resolved", "count", len(result.Items), "total", result.Total)
	}()

	if vErr := validatePage(req, s.maxPageSize); vErr.HasErrors() {
		err = vErr
		return
	}
	artist, lookupErr := s.ensureArtist(ctx, artistID)
	if lookupErr != nil {
		err = lookupErr
		return
	}

	slots, listErr := s.slots.ListSlotsByArtist(ctx, artistID)
	if listErr != nil {
		err = mapSlotRepoError(listErr)
		return
	}
	bookings, bookErr := s.bookingIntervals(ctx, artistID)
	if bookErr != nil {
		err = bookErr
		return
	}

	byID := make(map[string]AvailabilitySlot, len(slots))
	entries := make([]scheduler.Entry, 0, len(slots))
	for _, slot := range slots {
		byID[slot.ID] = slot
		entries = append(entries, scheduler.Entry{
			ID:       slot.ID,
			Interval: scheduler.Interval{Start: slot.Start, End: slot.End},
		})
	}

	free := scheduler.FilterFree(entries, intervalsOf(bookings))
	freeSlots := make([]AvailabilitySlot, 0, len(free))
	for _, entry := range free {
		slot := byID[entry.ID]
		slot.Artist = &artist
		freeSlots = append(freeSlots, slot)
	}

	result = newPageResult(paginate(freeSlots, req), len(freeSlots), req)
	return
}

// BookedTimes returns every moment of the artist as absolute instants ordered
// by start. An artist without moments yields an empty list.
func (s *ResolverService) BookedTimes(ctx context.Context, artistID string) (booked []BookedTime, err error) {
	if s == nil {
		err = fmt.Errorf("ResolverService is nil")
		return
	}

	logger := s.loggerWith(ctx, "BookedTimes", "artist_id", artistID)
	defer func() {
		s.recorder.RecordOperation("ResolverService", "BookedTimes", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to resolve booked times", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if _, err = s.ensureArtist(ctx, artistID); err != nil {
		return
	}
	booked, err = s.bookingIntervals(ctx, artistID)
	return
}

// ConcludedBookings returns the artist's moments whose end instant is
// strictly before now.
func (s *ResolverService) ConcludedBookings(ctx context.Context, artistID string) (concluded []BookedTime, err error) {
	if s == nil {
		err = fmt.Errorf("ResolverService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ConcludedBookings", "artist_id", artistID)
	defer func() {
		s.recorder.RecordOperation("ResolverService", "ConcludedBookings", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to resolve concluded bookings", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if _, err = s.ensureArtist(ctx, artistID); err != nil {
		return
	}
	booked, bookErr := s.bookingIntervals(ctx, artistID)
	if bookErr != nil {
		err = bookErr
		return
	}

	now := s.now()
	concluded = make([]BookedTime, 0, len(booked))
	for _, b := range booked {
		if b.End.Before(now) {
			concluded = append(concluded, b)
		}
	}
	return
}

func (s *ResolverService) ensureArtist(ctx context.Context, artistID string) (Artist, error) {
	if s.artists == nil || s.slots == nil || s.moments == nil {
		return Artist{}, fmt.Errorf("resolver repositories not configured")
	}
	artist, err := s.artists.GetArtist(ctx, artistID)
	if err != nil {
		return Artist{}, mapLookupError(err, "artist")
	}
	return artist, nil
}

func (s *ResolverService) bookingIntervals(ctx context.Context, artistID string) ([]BookedTime, error) {
	moments, err := s.moments.ListMomentsByArtist(ctx, artistID)
	if err != nil {
		return nil, mapMomentRepoError(err)
	}

	booked := make([]BookedTime, 0, len(moments))
	for _, moment := range moments {
		interval, err := scheduler.BookingInterval(moment.Date, moment.StartTime, moment.EndTime)
		if err != nil {
			// Stored moments were validated on write; skip anything unreadable.
			s.loggerWith(ctx, "bookingIntervals", "moment_id", moment.ID).
				WarnContext(ctx, "skipping moment with invalid interval", "error", err)
			continue
		}
		booked = append(booked, BookedTime{
			MomentID:   moment.ID,
			ArtistID:   moment.ArtistID,
			CategoryID: moment.CategoryID,
			Date:       moment.Date,
			Start:      interval.Start,
			End:        interval.End,
			Location:   moment.Location,
			Message:    moment.Message,
		})
	}

	sort.SliceStable(booked, func(i, j int) bool {
		if booked[i].Start.Equal(booked[j].Start) {
			return booked[i].MomentID < booked[j].MomentID
		}
		return booked[i].Start.Before(booked[j].Start)
	})
	return booked, nil
}

func intervalsOf(booked []BookedTime) []scheduler.Interval {
	intervals := make([]scheduler.Interval, 0, len(booked))
	for _, b := range booked {
		intervals = append(intervals, scheduler.Interval{Start: b.Start, End: b.End})
	}
	return intervals
}
