package persistence

import "time"

// Category classifies artists and moments. Name and Type are unique together.
type Category struct {
	ID          string
	Type        string
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Artist is a performer that owns availability slots and moments.
type Artist struct {
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

// AvailabilitySlot is an open window [Start, End) for one artist.
type AvailabilitySlot struct {
	ID        string
	ArtistID  string
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Moment is a confirmed booking on a calendar date between two times of day.
type Moment struct {
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
