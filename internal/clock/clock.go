// Package clock provides calendar-day keys and an injectable time source.
package clock

import "time"

// DayLayout is the format of day keys.
const DayLayout = "2006-01-02"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// System is the wall clock, optionally pinned to a location.
type System struct {
	Location *time.Location
}

// Now returns the current time in the configured location (local if nil).
func (s System) Now() time.Time {
	now := time.Now()
	if s.Location != nil {
		return now.In(s.Location)
	}
	return now
}

// Fixed always returns T. Tests move it forward by assigning T.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time { return f.T }

// DayKey returns the calendar date of t in t's own location.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// Today returns the day key for c.Now().
func Today(c Clock) string {
	return DayKey(c.Now())
}

// IsNextDay reports whether today is exactly one calendar day after prev.
// Malformed keys never match.
func IsNextDay(prev, today string) bool {
	p, err := time.Parse(DayLayout, prev)
	if err != nil {
		return false
	}
	return DayKey(p.AddDate(0, 0, 1)) == today
}
