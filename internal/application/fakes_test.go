package application

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/example/artist-booking/internal/persistence"
	"github.com/example/artist-booking/internal/scheduler"
)

// fakeStore implements every repository interface of the package on maps.
// Slot writes check for overlaps and then write in two separate critical
// sections so tests can observe whether callers serialise per artist.
type fakeStore struct {
	mu         sync.Mutex
	categories map[string]Category
	artists    map[string]Artist
	slots      map[string]AvailabilitySlot
	moments    map[string]Moment

	categoryLookups int
	artistLookups   int
	categoryErr     error
	deleteErr       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories: make(map[string]Category),
		artists:    make(map[string]Artist),
		slots:      make(map[string]AvailabilitySlot),
		moments:    make(map[string]Moment),
	}
}

func (f *fakeStore) CreateCategory(ctx context.Context, category Category) (Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.categories {
		if existing.Type == category.Type && existing.Name == category.Name {
			return Category{}, persistence.ErrDuplicate
		}
	}
	f.categories[category.ID] = category
	return category, nil
}

func (f *fakeStore) GetCategory(ctx context.Context, id string) (Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categoryLookups++
	if f.categoryErr != nil {
		return Category{}, f.categoryErr
	}
	category, ok := f.categories[id]
	if !ok {
		return Category{}, persistence.ErrNotFound
	}
	return category, nil
}

func (f *fakeStore) UpdateCategory(ctx context.Context, category Category) (Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[category.ID]; !ok {
		return Category{}, persistence.ErrNotFound
	}
	for id, existing := range f.categories {
		if id != category.ID && existing.Type == category.Type && existing.Name == category.Name {
			return Category{}, persistence.ErrDuplicate
		}
	}
	f.categories[category.ID] = category
	return category, nil
}

func (f *fakeStore) DeleteCategory(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.categories[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, artist := range f.artists {
		if artist.CategoryID == id {
			return persistence.ErrForeignKeyViolation
		}
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeStore) ListCategories(ctx context.Context, filter CategoryFilter) ([]Category, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Category
	for _, category := range f.categories {
		if filter.Type == "" || category.Type == filter.Type {
			out = append(out, category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, filter.Offset, filter.Limit), len(out), nil
}

func (f *fakeStore) CreateArtist(ctx context.Context, artist Artist) (Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artists[artist.ID] = artist
	return artist, nil
}

func (f *fakeStore) GetArtist(ctx context.Context, id string) (Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artistLookups++
	artist, ok := f.artists[id]
	if !ok {
		return Artist{}, persistence.ErrNotFound
	}
	return artist, nil
}

func (f *fakeStore) UpdateArtist(ctx context.Context, artist Artist) (Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.artists[artist.ID]; !ok {
		return Artist{}, persistence.ErrNotFound
	}
	f.artists[artist.ID] = artist
	return artist, nil
}

func (f *fakeStore) DeleteArtist(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.artists[id]; !ok {
		return persistence.ErrNotFound
	}
	for slotID, slot := range f.slots {
		if slot.ArtistID == id {
			delete(f.slots, slotID)
		}
	}
	for momentID, moment := range f.moments {
		if moment.ArtistID == id {
			delete(f.moments, momentID)
		}
	}
	delete(f.artists, id)
	return nil
}

func (f *fakeStore) ListArtists(ctx context.Context, offset, limit int) ([]Artist, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Artist, 0, len(f.artists))
	for _, artist := range f.artists {
		out = append(out, artist)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, offset, limit), len(out), nil
}

func (f *fakeStore) CreateSlot(ctx context.Context, slot AvailabilitySlot) (AvailabilitySlot, error) {
	if err := f.checkSlot(slot); err != nil {
		return AvailabilitySlot{}, err
	}
	runtime.Gosched()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[slot.ID] = slot
	return slot, nil
}

func (f *fakeStore) UpdateSlot(ctx context.Context, slot AvailabilitySlot) (AvailabilitySlot, error) {
	if err := f.checkSlot(slot); err != nil {
		return AvailabilitySlot{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.slots[slot.ID]; !ok {
		return AvailabilitySlot{}, persistence.ErrNotFound
	}
	f.slots[slot.ID] = slot
	return slot, nil
}

func (f *fakeStore) checkSlot(candidate AvailabilitySlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.artists[candidate.ArtistID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	for id, slot := range f.slots {
		if id == candidate.ID || slot.ArtistID != candidate.ArtistID {
			continue
		}
		if scheduler.Overlaps(slot.Start, slot.End, candidate.Start, candidate.End) {
			return fmt.Errorf("overlaps %s: %w", id, persistence.ErrOverlap)
		}
	}
	return nil
}

func (f *fakeStore) GetSlot(ctx context.Context, id string) (AvailabilitySlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[id]
	if !ok {
		return AvailabilitySlot{}, persistence.ErrNotFound
	}
	return slot, nil
}

func (f *fakeStore) DeleteSlot(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.slots[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(f.slots, id)
	return nil
}

func (f *fakeStore) ListSlots(ctx context.Context, offset, limit int) ([]AvailabilitySlot, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]AvailabilitySlot, 0, len(f.slots))
	for _, slot := range f.slots {
		out = append(out, slot)
	}
	sortSlotsByStart(out)
	return window(out, offset, limit), len(out), nil
}

func (f *fakeStore) ListSlotsByArtist(ctx context.Context, artistID string) ([]AvailabilitySlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]AvailabilitySlot, 0)
	for _, slot := range f.slots {
		if slot.ArtistID == artistID {
			out = append(out, slot)
		}
	}
	sortSlotsByStart(out)
	return out, nil
}

func (f *fakeStore) CreateMoment(ctx context.Context, moment Moment) (Moment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moments[moment.ID] = moment
	return moment, nil
}

func (f *fakeStore) GetMoment(ctx context.Context, id string) (Moment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	moment, ok := f.moments[id]
	if !ok {
		return Moment{}, persistence.ErrNotFound
	}
	return moment, nil
}

func (f *fakeStore) UpdateMoment(ctx context.Context, moment Moment) (Moment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.moments[moment.ID]; !ok {
		return Moment{}, persistence.ErrNotFound
	}
	f.moments[moment.ID] = moment
	return moment, nil
}

func (f *fakeStore) DeleteMoment(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.moments[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(f.moments, id)
	return nil
}

func (f *fakeStore) ListMoments(ctx context.Context, offset, limit int) ([]Moment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Moment, 0, len(f.moments))
	for _, moment := range f.moments {
		out = append(out, moment)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].StartTime > out[j].StartTime
	})
	return window(out, offset, limit), len(out), nil
}

func (f *fakeStore) ListMomentsByArtist(ctx context.Context, artistID string) ([]Moment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Moment, 0)
	for _, moment := range f.moments {
		if moment.ArtistID == artistID {
			out = append(out, moment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) seedCategory(id, categoryType, name string) Category {
	category := Category{ID: id, Type: categoryType, Name: name}
	f.categories[id] = category
	return category
}

func (f *fakeStore) seedArtist(id, categoryID string) Artist {
	artist := Artist{ID: id, Name: "Artist " + id, Price: "100", Location: "Lisbon", CategoryID: categoryID}
	f.artists[id] = artist
	return artist
}

func (f *fakeStore) seedSlot(id, artistID string, start, end time.Time) AvailabilitySlot {
	slot := AvailabilitySlot{ID: id, ArtistID: artistID, Start: start, End: end}
	f.slots[id] = slot
	return slot
}

func (f *fakeStore) seedMoment(id, artistID, categoryID, date, start, end string) Moment {
	moment := Moment{ID: id, ArtistID: artistID, CategoryID: categoryID, Date: date, StartTime: start, EndTime: end, Location: "Porto"}
	f.moments[id] = moment
	return moment
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func sortSlotsByStart(slots []AvailabilitySlot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Start.Equal(slots[j].Start) {
			return slots[i].ID < slots[j].ID
		}
		return slots[i].Start.Before(slots[j].Start)
	})
}

type recorderStub struct {
	mu         sync.Mutex
	operations []string
	conflicts  int
}

func (r *recorderStub) RecordOperation(service, operation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations = append(r.operations, service+"."+operation+":"+outcome)
}

func (r *recorderStub) RecordSlotConflict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts++
}

type publisherStub struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *publisherStub) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *publisherStub) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}
	return out
}

type sequenceIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (s *sequenceIDs) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s-%d", s.prefix, s.next)
}

var fixedNow = time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.January, day, hour, minute, 0, 0, time.UTC)
}
