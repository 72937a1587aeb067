package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/artist-booking/internal/application"
	"github.com/example/artist-booking/internal/persistence"
)

var (
	categoryCounter uint64
	artistCounter   uint64
	slotCounter     uint64
	momentCounter   uint64
)

var referenceTime = time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// --------------------------- Category fixtures ---------------------------

// CategoryFixture represents a deterministic category record.
type CategoryFixture struct {
	ID          string
	Type        string
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryOption configures the generated category fixture.
type CategoryOption func(*CategoryFixture)

// NewCategoryFixture returns an artist category with a unique name.
func NewCategoryFixture(opts ...CategoryOption) CategoryFixture {
	idx := atomic.AddUint64(&categoryCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := CategoryFixture{
		ID:        fmt.Sprintf("category-%03d", idx),
		Type:      application.CategoryTypeArtist,
		Name:      fmt.Sprintf("Category %03d", idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCategoryID overrides the generated category ID.
func WithCategoryID(id string) CategoryOption {
	return func(f *CategoryFixture) {
		f.ID = id
	}
}

// WithCategoryType sets the category type.
func WithCategoryType(categoryType string) CategoryOption {
	return func(f *CategoryFixture) {
		f.Type = categoryType
	}
}

// WithCategoryName overrides the generated name.
func WithCategoryName(name string) CategoryOption {
	return func(f *CategoryFixture) {
		f.Name = name
	}
}

// WithCategoryDescription sets the description.
func WithCategoryDescription(description string) CategoryOption {
	return func(f *CategoryFixture) {
		f.Description = &description
	}
}

// Persistence returns the fixture as a persistence.Category.
func (f CategoryFixture) Persistence() persistence.Category {
	return persistence.Category{
		ID:          f.ID,
		Type:        f.Type,
		Name:        f.Name,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input returns the fixture as an application.CategoryInput.
func (f CategoryFixture) Input() application.CategoryInput {
	return application.CategoryInput{Type: f.Type, Name: f.Name, Description: f.Description}
}

// ---------------------------- Artist fixtures ----------------------------

// ArtistFixture represents a deterministic artist record.
type ArtistFixture struct {
	ID         string
	Name       string
	Tags       []string
	Rating     int
	Price      string
	Location   string
	CategoryID string
	ImageURL   *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ArtistOption configures the generated artist fixture.
type ArtistOption func(*ArtistFixture)

// NewArtistFixture returns an artist in categoryID.
func NewArtistFixture(categoryID string, opts ...ArtistOption) ArtistFixture {
	idx := atomic.AddUint64(&artistCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := ArtistFixture{
		ID:         fmt.Sprintf("artist-%03d", idx),
		Name:       fmt.Sprintf("Artist %03d", idx),
		Tags:       []string{"live"},
		Rating:     4,
		Price:      "1500",
		Location:   "Lisbon",
		CategoryID: categoryID,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithArtistID overrides the generated artist ID.
func WithArtistID(id string) ArtistOption {
	return func(f *ArtistFixture) {
		f.ID = id
	}
}

// WithArtistName overrides the generated name.
func WithArtistName(name string) ArtistOption {
	return func(f *ArtistFixture) {
		f.Name = name
	}
}

// WithArtistTags replaces the tags.
func WithArtistTags(tags ...string) ArtistOption {
	return func(f *ArtistFixture) {
		f.Tags = tags
	}
}

// WithArtistRating sets the rating.
func WithArtistRating(rating int) ArtistOption {
	return func(f *ArtistFixture) {
		f.Rating = rating
	}
}

// WithArtistCreatedAt sets both timestamps.
func WithArtistCreatedAt(t time.Time) ArtistOption {
	return func(f *ArtistFixture) {
		f.CreatedAt = t
		f.UpdatedAt = t
	}
}

// Persistence returns the fixture as a persistence.Artist.
func (f ArtistFixture) Persistence() persistence.Artist {
	return persistence.Artist{
		ID:         f.ID,
		Name:       f.Name,
		Tags:       append([]string(nil), f.Tags...),
		Rating:     f.Rating,
		Price:      f.Price,
		Location:   f.Location,
		CategoryID: f.CategoryID,
		ImageURL:   f.ImageURL,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Input returns the fixture as an application.ArtistInput.
func (f ArtistFixture) Input() application.ArtistInput {
	return application.ArtistInput{
		Name:       f.Name,
		Tags:       append([]string(nil), f.Tags...),
		Rating:     f.Rating,
		Price:      f.Price,
		Location:   f.Location,
		CategoryID: f.CategoryID,
		ImageURL:   f.ImageURL,
	}
}

// ----------------------------- Slot fixtures -----------------------------

// SlotFixture represents a deterministic availability slot.
type SlotFixture struct {
	ID        string
	ArtistID  string
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotOption configures the generated slot fixture.
type SlotOption func(*SlotFixture)

// NewSlotFixture returns a one hour slot for artistID. Consecutive fixtures
// do not overlap.
func NewSlotFixture(artistID string, opts ...SlotOption) SlotFixture {
	idx := atomic.AddUint64(&slotCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * 2 * time.Hour)
	fixture := SlotFixture{
		ID:        fmt.Sprintf("slot-%03d", idx),
		ArtistID:  artistID,
		Start:     start,
		End:       start.Add(time.Hour),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSlotID overrides the generated slot ID.
func WithSlotID(id string) SlotOption {
	return func(f *SlotFixture) {
		f.ID = id
	}
}

// WithSlotWindow sets the slot interval.
func WithSlotWindow(start, end time.Time) SlotOption {
	return func(f *SlotFixture) {
		f.Start = start
		f.End = end
	}
}

// Persistence returns the fixture as a persistence.AvailabilitySlot.
func (f SlotFixture) Persistence() persistence.AvailabilitySlot {
	return persistence.AvailabilitySlot{
		ID:        f.ID,
		ArtistID:  f.ArtistID,
		Start:     f.Start,
		End:       f.End,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.SlotInput.
func (f SlotFixture) Input() application.SlotInput {
	return application.SlotInput{ArtistID: f.ArtistID, Start: f.Start, End: f.End}
}

// ---------------------------- Moment fixtures ----------------------------

// MomentFixture represents a deterministic booking.
type MomentFixture struct {
	ID         string
	ArtistID   string
	CategoryID string
	Date       string
	StartTime  string
	EndTime    string
	Location   string
	Message    *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MomentOption configures the generated moment fixture.
type MomentOption func(*MomentFixture)

// NewMomentFixture returns a 10:00-11:00 booking on the reference date.
func NewMomentFixture(artistID, categoryID string, opts ...MomentOption) MomentFixture {
	idx := atomic.AddUint64(&momentCounter, 1)
	fixture := MomentFixture{
		ID:         fmt.Sprintf("moment-%03d", idx),
		ArtistID:   artistID,
		CategoryID: categoryID,
		Date:       referenceTime.Format("2006-01-02"),
		StartTime:  "10:00",
		EndTime:    "11:00",
		Location:   "Main stage",
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMomentID overrides the generated moment ID.
func WithMomentID(id string) MomentOption {
	return func(f *MomentFixture) {
		f.ID = id
	}
}

// WithMomentDate sets the booking date (YYYY-MM-DD).
func WithMomentDate(date string) MomentOption {
	return func(f *MomentFixture) {
		f.Date = date
	}
}

// WithMomentTimes sets the start and end times of day (HH:MM).
func WithMomentTimes(start, end string) MomentOption {
	return func(f *MomentFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithMomentMessage sets the message.
func WithMomentMessage(message string) MomentOption {
	return func(f *MomentFixture) {
		f.Message = &message
	}
}

// Persistence returns the fixture as a persistence.Moment.
func (f MomentFixture) Persistence() persistence.Moment {
	return persistence.Moment{
		ID:         f.ID,
		ArtistID:   f.ArtistID,
		CategoryID: f.CategoryID,
		Date:       f.Date,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		Location:   f.Location,
		Message:    f.Message,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Input returns the fixture as an application.MomentInput.
func (f MomentFixture) Input() application.MomentInput {
	return application.MomentInput{
		ArtistID:   f.ArtistID,
		CategoryID: f.CategoryID,
		Date:       f.Date,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		Location:   f.Location,
		Message:    f.Message,
	}
}
