package application

import "time"

// Category types.
const (
	CategoryTypeArtist = "artist"
	CategoryTypeMoment = "moment"
)

// Category classifies artists and moments.
type Category struct {
	ID          string
	Type        string
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryInput carries the fields accepted when creating a category.
type CategoryInput struct {
	Type        string
	Name        string
	Description *string
}

// CategoryPatch carries optional category changes. Nil fields are left untouched.
type CategoryPatch struct {
	Type        *string
	Name        *string
	Description *string
}

// Artist is a performer. Category is populated on reads.
type Artist struct {
	ID         string
	Name       string
	Tags       []string
	Rating     int
	Price      string
	Location   string
	CategoryID string
	Category   *Category
	ImageURL   *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ArtistInput carries the fields accepted when creating an artist.
type ArtistInput struct {
	Name       string
	Tags       []string
	Rating     int
	Price      string
	Location   string
	CategoryID string
	ImageURL   *string
}

// ArtistPatch carries optional artist changes.
type ArtistPatch struct {
	Name       *string
	Tags       *[]string
	Rating     *int
	Price      *string
	Location   *string
	CategoryID *string
	ImageURL   *string
}

// AvailabilitySlot is an open window [Start, End) during which an artist can
// be booked.
type AvailabilitySlot struct {
	ID        string
	ArtistID  string
	Artist    *Artist
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotInput carries the fields accepted when creating a slot.
type SlotInput struct {
	ArtistID string
	Start    time.Time
	End      time.Time
}

// SlotPatch carries optional slot changes.
type SlotPatch struct {
	ArtistID *string
	Start    *time.Time
	End      *time.Time
}

// Moment is a confirmed booking for an artist on a date between two times of
// day. Artist and Category are populated on every read.
type Moment struct {
	ID         string
	ArtistID   string
	CategoryID string
	Artist     *Artist
	Category   *Category
	Date       string
	StartTime  string
	EndTime    string
	Location   string
	Message    *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MomentInput carries the fields accepted when creating a moment.
type MomentInput struct {
	ArtistID   string
	CategoryID string
	Date       string
	StartTime  string
	EndTime    string
	Location   string
	Message    *string
}

// MomentPatch carries optional moment changes.
type MomentPatch struct {
	ArtistID   *string
	CategoryID *string
	Date       *string
	StartTime  *string
	EndTime    *string
	Location   *string
	Message    *string
}

// MomentOverlap warns that a moment shares time with another moment of the
// same artist. Overlapping moments are accepted.
type MomentOverlap struct {
	MomentID string
	Start    time.Time
	End      time.Time
}

// MomentResult is returned by moment writes.
type MomentResult struct {
	Moment   Moment
	Warnings []MomentOverlap
}

// BookedTime exposes a moment as absolute instants.
type BookedTime struct {
	MomentID   string
	ArtistID   string
	CategoryID string
	Date       string
	Start      time.Time
	End        time.Time
	Location   string
	Message    *string
}
