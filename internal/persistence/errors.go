package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a record violates a uniqueness constraint.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrOverlap is returned when an availability slot overlaps another slot of the same artist.
	ErrOverlap = errors.New("persistence: overlapping availability slot")
	// ErrForeignKeyViolation is returned when a referenced record is missing or still referenced.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrConstraintViolation is returned when a record breaks a column level constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
