package scheduler

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, time.January, 1, hour, minute, 0, 0, time.UTC)
}

func entry(id string, start, end time.Time) Entry {
	return Entry{ID: id, Interval: Interval{Start: start, End: end}}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a    Interval
		b    Interval
		want bool
	}{
		{"partial overlap", Interval{at(10, 0), at(11, 0)}, Interval{at(10, 30), at(11, 30)}, true},
		{"containment", Interval{at(9, 0), at(17, 0)}, Interval{at(10, 0), at(11, 0)}, true},
		{"identical", Interval{at(10, 0), at(11, 0)}, Interval{at(10, 0), at(11, 0)}, true},
		{"touching end", Interval{at(10, 0), at(11, 0)}, Interval{at(11, 0), at(12, 0)}, false},
		{"touching start", Interval{at(11, 0), at(12, 0)}, Interval{at(10, 0), at(11, 0)}, false},
		{"disjoint", Interval{at(8, 0), at(9, 0)}, Interval{at(10, 0), at(11, 0)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Fatalf("expected symmetric result %v, got %v", tc.want, got)
			}
		})
	}
}

func TestDetectConflicts(t *testing.T) {
	existing := []Entry{
		entry("slot-b", at(13, 0), at(14, 0)),
		entry("slot-a", at(10, 30), at(11, 30)),
		entry("slot-c", at(11, 30), at(12, 0)),
	}

	t.Run("overlapping slot produces conflict", func(t *testing.T) {
		conflicts := DetectConflicts(existing, entry("", at(10, 0), at(11, 0)), ConflictTypeSlot)
		if len(conflicts) != 1 {
			t.Fatalf("expected 1 conflict, got %d", len(conflicts))
		}
		if conflicts[0].WithID != "slot-a" || conflicts[0].Type != ConflictTypeSlot {
			t.Fatalf("unexpected conflict %+v", conflicts[0])
		}
	})

	t.Run("touching boundary yields no conflict", func(t *testing.T) {
		conflicts := DetectConflicts(existing, entry("", at(12, 0), at(13, 0)), ConflictTypeSlot)
		if len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("conflicts are ordered by start", func(t *testing.T) {
		conflicts := DetectConflicts(existing, entry("", at(9, 0), at(18, 0)), ConflictTypeBooking)
		if len(conflicts) != 3 {
			t.Fatalf("expected 3 conflicts, got %d", len(conflicts))
		}
		order := []string{conflicts[0].WithID, conflicts[1].WithID, conflicts[2].WithID}
		if order[0] != "slot-a" || order[1] != "slot-c" || order[2] != "slot-b" {
			t.Fatalf("unexpected order %v", order)
		}
	})

	t.Run("candidate does not conflict with itself", func(t *testing.T) {
		conflicts := DetectConflicts(existing, entry("slot-a", at(10, 0), at(11, 0)), ConflictTypeSlot)
		if len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("invalid candidate yields nothing", func(t *testing.T) {
		if conflicts := DetectConflicts(existing, entry("", at(11, 0), at(10, 0)), ConflictTypeSlot); conflicts != nil {
			t.Fatalf("expected nil, got %+v", conflicts)
		}
	})
}

func TestFilterFree(t *testing.T) {
	t.Run("slot overlapping a booking is dropped whole", func(t *testing.T) {
		slots := []Entry{entry("day", at(9, 0), at(17, 0))}
		free := FilterFree(slots, []Interval{{at(10, 0), at(11, 0)}})
		if len(free) != 0 {
			t.Fatalf("expected slot to be excluded, got %+v", free)
		}
	})

	t.Run("touching bookings keep the slot", func(t *testing.T) {
		slots := []Entry{entry("morning", at(9, 0), at(12, 0))}
		bookings := []Interval{{at(8, 0), at(9, 0)}, {at(12, 0), at(13, 0)}}
		free := FilterFree(slots, bookings)
		if len(free) != 1 || free[0].ID != "morning" {
			t.Fatalf("expected morning slot to stay free, got %+v", free)
		}
	})

	t.Run("order of slots is preserved", func(t *testing.T) {
		slots := []Entry{
			entry("a", at(8, 0), at(9, 0)),
			entry("b", at(10, 0), at(11, 0)),
			entry("c", at(12, 0), at(13, 0)),
			entry("d", at(14, 0), at(15, 0)),
		}
		bookings := []Interval{{at(14, 30), at(16, 0)}, {at(10, 59), at(11, 30)}}
		free := FilterFree(slots, bookings)
		if len(free) != 2 || free[0].ID != "a" || free[1].ID != "c" {
			t.Fatalf("unexpected free slots %+v", free)
		}
	})

	t.Run("no slots returns empty slice", func(t *testing.T) {
		free := FilterFree(nil, []Interval{{at(10, 0), at(11, 0)}})
		if free == nil || len(free) != 0 {
			t.Fatalf("expected empty non-nil slice, got %#v", free)
		}
	})

	t.Run("never returns a slot overlapping any booking", func(t *testing.T) {
		var slots []Entry
		var bookings []Interval
		for i := 0; i < 24; i++ {
			start := at(0, 0).Add(time.Duration(i*37) * time.Minute)
			slots = append(slots, entry(string(rune('a'+i)), start, start.Add(50*time.Minute)))
			if i%3 == 0 {
				b := at(0, 0).Add(time.Duration(i*53) * time.Minute)
				bookings = append(bookings, Interval{b, b.Add(20 * time.Minute)})
			}
		}
		for _, slot := range FilterFree(slots, bookings) {
			for _, booking := range bookings {
				if slot.Overlaps(booking) {
					t.Fatalf("slot %s overlaps booking %v", slot.ID, booking)
				}
			}
		}
	})
}
