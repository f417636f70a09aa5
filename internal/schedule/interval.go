package schedule

import (
	"fmt"
	"time"
)

// Interval is a half-open [Start, End) window expressed in minutes since
// midnight. An interval ending at minute m does not overlap one starting at m.
type Interval struct {
	Start int
	End   int
}

// Valid reports whether the interval is well-formed and fits in one day.
func (iv Interval) Valid() bool {
	return 0 <= iv.Start && iv.Start < iv.End && iv.End <= 24*60
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Contains reports whether other lies fully inside iv.
func (iv Interval) Contains(other Interval) bool {
	return iv.Start <= other.Start && other.End <= iv.End
}

// Duration returns the interval length in minutes.
func (iv Interval) Duration() int {
	return iv.End - iv.Start
}

// ParseClock converts a "15:04" wall-clock string to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as a "15:04" string.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseInterval builds an Interval from "15:04" start and end strings.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	iv := Interval{Start: s, End: e}
	if !iv.Valid() {
		return Interval{}, fmt.Errorf("invalid interval %s-%s: start must precede end", start, end)
	}
	return iv, nil
}

// ParseDate validates an ISO calendar date (2006-01-02) and returns it
// normalized.
func ParseDate(s string) (string, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t.Format("2006-01-02"), nil
}
