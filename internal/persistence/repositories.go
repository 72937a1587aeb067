package persistence

import "context"

// Page selects a window of an ordered result. A non-positive Limit returns
// every row from Offset onward.
type Page struct {
	Offset int
	Limit  int
}

// CategoryFilter narrows category listings.
type CategoryFilter struct {
	Type string
	Page Page
}

// CategoryRepository exposes CRUD operations for categories.
//
// Create and Update return ErrDuplicate when another category already uses the
// same name and type. Delete returns ErrForeignKeyViolation while artists or
// moments still reference the category.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category Category) error
	UpdateCategory(ctx context.Context, category Category) error
	GetCategory(ctx context.Context, id string) (Category, error)
	ListCategories(ctx context.Context, filter CategoryFilter) ([]Category, int, error)
	DeleteCategory(ctx context.Context, id string) error
}

// ArtistRepository exposes CRUD operations for artists. DeleteArtist removes
// the artist's availability slots and moments in the same transaction.
type ArtistRepository interface {
	CreateArtist(ctx context.Context, artist Artist) error
	UpdateArtist(ctx context.Context, artist Artist) error
	GetArtist(ctx context.Context, id string) (Artist, error)
	ListArtists(ctx context.Context, page Page) ([]Artist, int, error)
	DeleteArtist(ctx context.Context, id string) error
}

// AvailabilityRepository stores availability slots.
//
// CreateSlot and UpdateSlot run the overlap check against the artist's other
// slots and the write atomically, returning ErrOverlap when the half-open
// intervals intersect and ErrForeignKeyViolation when the artist is missing.
type AvailabilityRepository interface {
	CreateSlot(ctx context.Context, slot AvailabilitySlot) error
	UpdateSlot(ctx context.Context, slot AvailabilitySlot) error
	GetSlot(ctx context.Context, id string) (AvailabilitySlot, error)
	ListSlots(ctx context.Context, page Page) ([]AvailabilitySlot, int, error)
	ListSlotsByArtist(ctx context.Context, artistID string) ([]AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, id string) error
}

// MomentRepository stores confirmed bookings. ListMoments orders by date
// descending, then start time descending.
type MomentRepository interface {
	CreateMoment(ctx context.Context, moment Moment) error
	UpdateMoment(ctx context.Context, moment Moment) error
	GetMoment(ctx context.Context, id string) (Moment, error)
	ListMoments(ctx context.Context, page Page) ([]Moment, int, error)
	ListMomentsByArtist(ctx context.Context, artistID string) ([]Moment, error)
	DeleteMoment(ctx context.Context, id string) error
}

// Store bundles every repository a backend provides.
type Store interface {
	CategoryRepository
	ArtistRepository
	AvailabilityRepository
	MomentRepository
	Close() error
}
