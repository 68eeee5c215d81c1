// Package timeutil provides UTC day arithmetic for assessment dates.
// Assessments are keyed by calendar day in UTC, so every date comparison
// in the system goes through these helpers to avoid timezone drift.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// DateLayout is the canonical wire format for assessment dates.
const DateLayout = "2006-01-02"

// StartOfDay returns the start of the UTC calendar day containing t.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last nanosecond of the UTC calendar day containing t.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// DaysBetween returns the number of whole UTC calendar days from `from`
// to `to`. Negative when `to` precedes `from`.
func DaysBetween(from, to time.Time) int {
	return int(StartOfDay(to).Sub(StartOfDay(from)).Hours() / 24)
}

// DaysSince returns the number of whole UTC calendar days elapsed since t.
func DaysSince(t time.Time) int {
	return DaysBetween(t, time.Now())
}

// FormatDate renders t as a UTC calendar date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a calendar date in the canonical wire format.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// NextDailyRun returns the next occurrence of hour:minute UTC strictly
// after now. Used by the scheduler to anchor nightly jobs.
func NextDailyRun(now time.Time, hour, minute int) time.Time {
	u := now.UTC()
	next := time.Date(u.Year(), u.Month(), u.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(u) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
