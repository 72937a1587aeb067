package scheduler

import "sort"

// FilterFree keeps the slots that overlap none of the bookings. Slots are
// kept or dropped whole; they are never split around a booking. The input
// order of slots is preserved.
func FilterFree(slots []Entry, bookings []Interval) []Entry {
	if len(slots) == 0 {
		return []Entry{}
	}

	sorted := make([]Interval, 0, len(bookings))
	for _, booking := range bookings {
		if booking.Valid() {
			sorted = append(sorted, booking)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	free := make([]Entry, 0, len(slots))
	for _, slot := range slots {
		if !overlapsAny(slot.Interval, sorted) {
			free = append(free, slot)
		}
	}
	return free
}

// overlapsAny expects bookings sorted by start.
func overlapsAny(slot Interval, bookings []Interval) bool {
	for _, booking := range bookings {
		if !booking.Start.Before(slot.End) {
			return false
		}
		if booking.Overlaps(slot) {
			return true
		}
	}
	return false
}
