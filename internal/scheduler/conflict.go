package scheduler

import "sort"

// Entry is an identified interval owned by a single artist, such as an
// availability slot or a booking.
type Entry struct {
	ID string
	Interval
}

// ConflictType describes what kind of entry the candidate collides with.
type ConflictType string

const (
	// ConflictTypeSlot indicates an overlapping availability slot.
	ConflictTypeSlot ConflictType = "slot"
	// ConflictTypeBooking indicates an overlapping booking.
	ConflictTypeBooking ConflictType = "booking"
)

// Conflict details an overlapping entry that callers can present to users.
type Conflict struct {
	WithID   string
	Type     ConflictType
	Interval Interval
}

// DetectConflicts returns every existing entry that overlaps the candidate,
// ordered by start time and then identifier. An entry sharing the candidate's
// ID is the candidate itself and is skipped, so updates can pass the full set.
func DetectConflicts(existing []Entry, candidate Entry, kind ConflictType) []Conflict {
	if !candidate.Valid() {
		return nil
	}

	var conflicts []Conflict
	for _, entry := range existing {
		if candidate.ID != "" && entry.ID == candidate.ID {
			continue
		}
		if !entry.Overlaps(candidate.Interval) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			WithID:   entry.ID,
			Type:     kind,
			Interval: entry.Interval,
		})
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		if conflicts[i].Interval.Start.Equal(conflicts[j].Interval.Start) {
			return conflicts[i].WithID < conflicts[j].WithID
		}
		return conflicts[i].Interval.Start.Before(conflicts[j].Interval.Start)
	})

	return conflicts
}
