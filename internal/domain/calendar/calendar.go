// Package calendar holds the UTC day arithmetic shared by jobs and repositories.
package calendar

import "time"

const dayLayout = "2006-01-02"

// StartOfDay returns UTC midnight of t's UTC date.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey formats t's UTC date as "2006-01-02".
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// SameDay reports whether a and b fall on the same UTC date.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// EndOfDay returns the last representable instant of t's UTC date.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
