// Package memory provides an in-process implementation of the persistence
// contracts. It is used by tests and by the "memory" storage driver.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/example/artist-booking/internal/persistence"
	"github.com/example/artist-booking/internal/scheduler"
)

// Store keeps every record in maps guarded by a single lock. Slot writes
// perform the overlap check and the insert while holding the write lock.
type Store struct {
	mu         sync.RWMutex
	categories map[string]persistence.Category
	artists    map[string]persistence.Artist
	slots      map[string]persistence.AvailabilitySlot
	moments    map[string]persistence.Moment
}

var _ persistence.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		categories: make(map[string]persistence.Category),
		artists:    make(map[string]persistence.Artist),
		slots:      make(map[string]persistence.AvailabilitySlot),
		moments:    make(map[string]persistence.Moment),
	}
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// --- CategoryRepository implementation ---

// CreateCategory stores a new category.
func (s *Store) CreateCategory(ctx context.Context, category persistence.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[category.ID]; ok {
		return fmt.Errorf("memory: category %s: %w", category.ID, persistence.ErrDuplicate)
	}
	if err := s.ensureUniqueCategoryLocked(category); err != nil {
		return err
	}

	s.categories[category.ID] = cloneCategory(category)
	return nil
}

// UpdateCategory replaces an existing category.
func (s *Store) UpdateCategory(ctx context.Context, category persistence.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[category.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueCategoryLocked(category); err != nil {
		return err
	}

	category.CreatedAt = existing.CreatedAt
	s.categories[category.ID] = cloneCategory(category)
	return nil
}

// GetCategory retrieves a category by ID.
func (s *Store) GetCategory(ctx context.Context, id string) (persistence.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.categories[id]
	if !ok {
		return persistence.Category{}, persistence.ErrNotFound
	}
	return cloneCategory(category), nil
}

// ListCategories returns categories ordered by CreatedAt descending.
func (s *Store) ListCategories(ctx context.Context, filter persistence.CategoryFilter) ([]persistence.Category, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]persistence.Category, 0, len(s.categories))
	for _, category := range s.categories {
		if filter.Type != "" && category.Type != filter.Type {
			continue
		}
		categories = append(categories, cloneCategory(category))
	}

	sort.Slice(categories, func(i, j int) bool {
		if categories[i].CreatedAt.Equal(categories[j].CreatedAt) {
			return categories[i].ID < categories[j].ID
		}
		return categories[i].CreatedAt.After(categories[j].CreatedAt)
	})

	return window(categories, filter.Page), len(categories), nil
}

// DeleteCategory removes a category that no artist or moment references.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, artist := range s.artists {
		if artist.CategoryID == id {
			return fmt.Errorf("memory: category %s referenced by artist %s: %w", id, artist.ID, persistence.ErrForeignKeyViolation)
		}
	}
	for _, moment := range s.moments {
		if moment.CategoryID == id {
			return fmt.Errorf("memory: category %s referenced by moment %s: %w", id, moment.ID, persistence.ErrForeignKeyViolation)
		}
	}

	delete(s.categories, id)
	return nil
}

func (s *Store) ensureUniqueCategoryLocked(candidate persistence.Category) error {
	for id, category := range s.categories {
		if id == candidate.ID {
			continue
		}
		if category.Type == candidate.Type && strings.EqualFold(category.Name, candidate.Name) {
			return fmt.Errorf("memory: category %q of type %s: %w", candidate.Name, candidate.Type, persistence.ErrDuplicate)
		}
	}
	return nil
}

// --- ArtistRepository implementation ---

// CreateArtist stores a new artist.
func (s *Store) CreateArtist(ctx context.Context, artist persistence.Artist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artists[artist.ID]; ok {
		return fmt.Errorf("memory: artist %s: %w", artist.ID, persistence.ErrDuplicate)
	}
	if _, ok := s.categories[artist.CategoryID]; !ok {
		return fmt.Errorf("memory: category %s: %w", artist.CategoryID, persistence.ErrForeignKeyViolation)
	}

	s.artists[artist.ID] = cloneArtist(artist)
	return nil
}

// UpdateArtist replaces an existing artist.
func (s *Store) UpdateArtist(ctx context.Context, artist persistence.Artist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.artists[artist.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if _, ok := s.categories[artist.CategoryID]; !ok {
		return fmt.Errorf("memory: category %s: %w", artist.CategoryID, persistence.ErrForeignKeyViolation)
	}

	artist.CreatedAt = existing.CreatedAt
	s.artists[artist.ID] = cloneArtist(artist)
	return nil
}

// GetArtist retrieves an artist by ID.
func (s *Store) GetArtist(ctx context.Context, id string) (persistence.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artist, ok := s.artists[id]
	if !ok {
		return persistence.Artist{}, persistence.ErrNotFound
	}
	return cloneArtist(artist), nil
}

// ListArtists returns artists ordered by CreatedAt descending.
func (s *Store) ListArtists(ctx context.Context, page persistence.Page) ([]persistence.Artist, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artists := make([]persistence.Artist, 0, len(s.artists))
	for _, artist := range s.artists {
		artists = append(artists, cloneArtist(artist))
	}

	sort.Slice(artists, func(i, j int) bool {
		if artists[i].CreatedAt.Equal(artists[j].CreatedAt) {
			return artists[i].ID < artists[j].ID
		}
		return artists[i].CreatedAt.After(artists[j].CreatedAt)
	})

	return window(artists, page), len(artists), nil
}

// DeleteArtist removes an artist together with its slots and moments.
func (s *Store) DeleteArtist(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artists[id]; !ok {
		return persistence.ErrNotFound
	}

	for slotID, slot := range s.slots {
		if slot.ArtistID == id {
			delete(s.slots, slotID)
		}
	}
	for momentID, moment := range s.moments {
		if moment.ArtistID == id {
			delete(s.moments, momentID)
		}
	}
	delete(s.artists, id)
	return nil
}

// --- AvailabilityRepository implementation ---

// CreateSlot stores a slot after checking it against the artist's other slots.
func (s *Store) CreateSlot(ctx context.Context, slot persistence.AvailabilitySlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[slot.ID]; ok {
		return fmt.Errorf("memory: slot %s: %w", slot.ID, persistence.ErrDuplicate)
	}
	if err := s.checkSlotLocked(slot); err != nil {
		return err
	}

	s.slots[slot.ID] = slot
	return nil
}

// UpdateSlot replaces a slot after checking it against the artist's other slots.
func (s *Store) UpdateSlot(ctx context.Context, slot persistence.AvailabilitySlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.slots[slot.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if err := s.checkSlotLocked(slot); err != nil {
		return err
	}

	slot.CreatedAt = existing.CreatedAt
	s.slots[slot.ID] = slot
	return nil
}

// GetSlot retrieves a slot by ID.
func (s *Store) GetSlot(ctx context.Context, id string) (persistence.AvailabilitySlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[id]
	if !ok {
		return persistence.AvailabilitySlot{}, persistence.ErrNotFound
	}
	return slot, nil
}

// ListSlots returns slots ordered by start ascending.
func (s *Store) ListSlots(ctx context.Context, page persistence.Page) ([]persistence.AvailabilitySlot, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]persistence.AvailabilitySlot, 0, len(s.slots))
	for _, slot := range s.slots {
		slots = append(slots, slot)
	}
	sortSlots(slots)

	return window(slots, page), len(slots), nil
}

// ListSlotsByArtist returns every slot of one artist ordered by start ascending.
func (s *Store) ListSlotsByArtist(ctx context.Context, artistID string) ([]persistence.AvailabilitySlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]persistence.AvailabilitySlot, 0)
	for _, slot := range s.slots {
		if slot.ArtistID == artistID {
			slots = append(slots, slot)
		}
	}
	sortSlots(slots)
	return slots, nil
}

// DeleteSlot removes a slot by ID.
func (s *Store) DeleteSlot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.slots, id)
	return nil
}

func (s *Store) checkSlotLocked(candidate persistence.AvailabilitySlot) error {
	if !candidate.Start.Before(candidate.End) {
		return fmt.Errorf("memory: slot %s ends before it starts: %w", candidate.ID, persistence.ErrConstraintViolation)
	}
	if _, ok := s.artists[candidate.ArtistID]; !ok {
		return fmt.Errorf("memory: artist %s: %w", candidate.ArtistID, persistence.ErrForeignKeyViolation)
	}

	for id, slot := range s.slots {
		if id == candidate.ID || slot.ArtistID != candidate.ArtistID {
			continue
		}
		if scheduler.Overlaps(slot.Start, slot.End, candidate.Start, candidate.End) {
			return fmt.Errorf("memory: slot overlaps %s: %w", id, persistence.ErrOverlap)
		}
	}
	return nil
}

// --- MomentRepository implementation ---

// CreateMoment stores a new moment.
func (s *Store) CreateMoment(ctx context.Context, moment persistence.Moment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.moments[moment.ID]; ok {
		return fmt.Errorf("memory: moment %s: %w", moment.ID, persistence.ErrDuplicate)
	}
	if err := s.checkMomentRefsLocked(moment); err != nil {
		return err
	}

	s.moments[moment.ID] = cloneMoment(moment)
	return nil
}

// UpdateMoment replaces an existing moment.
func (s *Store) UpdateMoment(ctx context.Context, moment persistence.Moment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.moments[moment.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if err := s.checkMomentRefsLocked(moment); err != nil {
		return err
	}

	moment.CreatedAt = existing.CreatedAt
	s.moments[moment.ID] = cloneMoment(moment)
	return nil
}

// GetMoment retrieves a moment by ID.
func (s *Store) GetMoment(ctx context.Context, id string) (persistence.Moment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	moment, ok := s.moments[id]
	if !ok {
		return persistence.Moment{}, persistence.ErrNotFound
	}
	return cloneMoment(moment), nil
}

// ListMoments returns moments ordered by date descending.
func (s *Store) ListMoments(ctx context.Context, page persistence.Page) ([]persistence.Moment, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	moments := make([]persistence.Moment, 0, len(s.moments))
	for _, moment := range s.moments {
		moments = append(moments, cloneMoment(moment))
	}

	sort.Slice(moments, func(i, j int) bool {
		a, b := moments[i], moments[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime > b.StartTime
		}
		return a.ID < b.ID
	})

	return window(moments, page), len(moments), nil
}

// ListMomentsByArtist returns every moment of one artist ordered by date and start time.
func (s *Store) ListMomentsByArtist(ctx context.Context, artistID string) ([]persistence.Moment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	moments := make([]persistence.Moment, 0)
	for _, moment := range s.moments {
		if moment.ArtistID == artistID {
			moments = append(moments, cloneMoment(moment))
		}
	}

	sort.Slice(moments, func(i, j int) bool {
		a, b := moments[i], moments[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
	return moments, nil
}

// DeleteMoment removes a moment by ID.
func (s *Store) DeleteMoment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.moments[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.moments, id)
	return nil
}

func (s *Store) checkMomentRefsLocked(moment persistence.Moment) error {
	if _, ok := s.artists[moment.ArtistID]; !ok {
		return fmt.Errorf("memory: artist %s: %w", moment.ArtistID, persistence.ErrForeignKeyViolation)
	}
	if _, ok := s.categories[moment.CategoryID]; !ok {
		return fmt.Errorf("memory: category %s: %w", moment.CategoryID, persistence.ErrForeignKeyViolation)
	}
	return nil
}

// --- helpers ---

func window[T any](items []T, page persistence.Page) []T {
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if page.Limit > 0 && offset+page.Limit < end {
		end = offset + page.Limit
	}
	return items[offset:end]
}

func sortSlots(slots []persistence.AvailabilitySlot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Start.Equal(slots[j].Start) {
			return slots[i].ID < slots[j].ID
		}
		return slots[i].Start.Before(slots[j].Start)
	})
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func cloneCategory(category persistence.Category) persistence.Category {
	category.Description = cloneString(category.Description)
	return category
}

func cloneArtist(artist persistence.Artist) persistence.Artist {
	if artist.Tags != nil {
		artist.Tags = append([]string(nil), artist.Tags...)
	}
	artist.ImageURL = cloneString(artist.ImageURL)
	return artist
}

func cloneMoment(moment persistence.Moment) persistence.Moment {
	moment.Message = cloneString(moment.Message)
	return moment
}
