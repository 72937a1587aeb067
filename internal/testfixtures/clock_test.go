package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if got := clock.Now(); !got.Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", got)
	}
	if got := clock.Now(); !got.Equal(ReferenceTime()) {
		t.Fatalf("clock without step should not move, got %v", got)
	}
}

func TestSteppingClockAdvancesPerReading(t *testing.T) {
	start := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	clock := NewSteppingClock(start, time.Second)

	first := clock.Now()
	second := clock.Now()

	if !first.Equal(start) {
		t.Fatalf("first reading should be the start, got %v", first)
	}
	if !second.Equal(start.Add(time.Second)) {
		t.Fatalf("second reading should be one step later, got %v", second)
	}
	if !clock.Peek().Equal(start.Add(2 * time.Second)) {
		t.Fatalf("peek should not advance, got %v", clock.Peek())
	}
}

func TestClockSetAndAdvance(t *testing.T) {
	start := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	if got := clock.Advance(90 * time.Minute); !got.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", got)
	}

	clock.Set(start)
	if got := clock.Now(); !got.Equal(start) {
		t.Fatalf("expected %v after Set, got %v", start, got)
	}
}
