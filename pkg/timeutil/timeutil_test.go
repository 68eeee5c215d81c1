package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDayNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 02:30 local on Jan 2 is still Jan 1 in UTC.
	local := time.Date(2026, 1, 2, 2, 30, 0, 0, loc)

	got := StartOfDay(local)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 3, 10, 0, 0, 1, 0, time.UTC)
	b := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(b, c))
}

func TestDaysBetween(t *testing.T) {
	from := time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 4, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, DaysBetween(from, to))
	assert.Equal(t, -3, DaysBetween(to, from))
	assert.Equal(t, 0, DaysBetween(from, from))
}

func TestParseAndFormatDate(t *testing.T) {
	d, err := ParseDate("2026-08-23")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-23", FormatDate(d))

	_, err = ParseDate("23/08/2026")
	assert.Error(t, err)
}

func TestNextDailyRun(t *testing.T) {
	now := time.Date(2026, 5, 1, 2, 0, 0, 0, time.UTC)

	// Target later today.
	next := NextDailyRun(now, 3, 30)
	assert.Equal(t, time.Date(2026, 5, 1, 3, 30, 0, 0, time.UTC), next)

	// Target already passed rolls over to tomorrow.
	next = NextDailyRun(now, 1, 0)
	assert.Equal(t, time.Date(2026, 5, 2, 1, 0, 0, 0, time.UTC), next)

	// Exactly at the target is not "after" - schedule tomorrow.
	at := time.Date(2026, 5, 1, 3, 30, 0, 0, time.UTC)
	next = NextDailyRun(at, 3, 30)
	assert.Equal(t, time.Date(2026, 5, 2, 3, 30, 0, 0, time.UTC), next)
}
