package scheduler

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by bookings.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidDate is returned for dates that are not YYYY-MM-DD calendar dates.
	ErrInvalidDate = errors.New("scheduler: invalid date")
	// ErrInvalidClock is returned for times of day that are not HH:MM in 24-hour form.
	ErrInvalidClock = errors.New("scheduler: invalid time of day")
	// ErrEmptyInterval is returned when a booking starts and ends at the same time of day.
	ErrEmptyInterval = errors.New("scheduler: start and end time are equal")
)

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)
)

// ParseDate validates a YYYY-MM-DD string and returns midnight UTC of that day.
// Out of range components such as month 13 or day 40 are rejected.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if !datePattern.MatchString(value) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	day, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return day, nil
}

// ParseClock returns the offset from midnight for an HH:MM time of day. A
// single digit hour such as 9:30 is accepted.
func ParseClock(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if !clockPattern.MatchString(value) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hh, mm, _ := strings.Cut(value, ":")
	hours, _ := strconv.Atoi(hh)
	minutes, _ := strconv.Atoi(mm)
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}

// NormalizeClock rewrites a valid time of day into zero padded HH:MM form.
func NormalizeClock(value string) (string, error) {
	offset, err := ParseClock(value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", int(offset.Hours()), int(offset.Minutes())%60), nil
}

// BookingInterval combines a calendar date with start and end times of day.
// When the end time is earlier than the start time the booking runs past
// midnight and ends on the following day.
func BookingInterval(date, start, end string) (Interval, error) {
	day, err := ParseDate(date)
	if err != nil {
		return Interval{}, err
	}
	startOffset, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	endOffset, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	if startOffset == endOffset {
		return Interval{}, ErrEmptyInterval
	}

	interval := Interval{
		Start: day.Add(startOffset),
		End:   day.Add(endOffset),
	}
	if endOffset < startOffset {
		interval.End = day.AddDate(0, 0, 1).Add(endOffset)
	}
	return interval, nil
}
