package utils

import (
	"fmt"
	"time"

	"github.com/tandrum/tandrum/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// DayKey returns the YYYY-MM-DD calendar day of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constants.DateFormat)
}

// ISOWeekKey returns the ISO 8601 week of t in loc, e.g. "2026-W07".
func ISOWeekKey(t time.Time, loc *time.Location) string {
	year, week := t.In(loc).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayKey(a, loc) == DayKey(b, loc)
}

// SameISOWeek reports whether a and b fall in the same ISO week in loc.
func SameISOWeek(a, b time.Time, loc *time.Location) bool {
	ay, aw := a.In(loc).ISOWeek()
	by, bw := b.In(loc).ISOWeek()
	return ay == by && aw == bw
}

// InPeriod reports whether last falls in the completion period of now
// for the given frequency. A nil last is never in period.
func InPeriod(last *time.Time, now time.Time, freq constants.Frequency, loc *time.Location) bool {
	if last == nil {
		return false
	}
	switch freq {
	case constants.FrequencyWeekly:
		return SameISOWeek(*last, now, loc)
	default:
		return SameDay(*last, now, loc)
	}
}

// DaysBetween returns the number of calendar days from day a to day b
// (both YYYY-MM-DD). The result is negative when b precedes a.
func DaysBetween(a, b string) (int, error) {
	ta, err := time.Parse(constants.DateFormat, a)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", a, err)
	}
	tb, err := time.Parse(constants.DateFormat, b)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", b, err)
	}
	// Both parse at UTC midnight so the difference is a whole number of days
	return int(tb.Sub(ta).Hours() / 24), nil
}

// ISOWeekKeyForDay returns the ISO week key of a YYYY-MM-DD day.
func ISOWeekKeyForDay(day string) (string, error) {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", day, err)
	}
	return ISOWeekKey(t, time.UTC), nil
}
