package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// NormalizeDate strips the time-of-day and zone from t, returning midnight UTC
// of the same calendar day as seen in t's own location.
// All dates in the domain are normalized this way so they compare with Equal.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "2006-01-02" string into a normalized date.
// RFC 3339 timestamps are accepted too and reduced to the calendar date they
// are written in, so "2024-01-08T00:00:00.000Z" is 2024-01-08.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return NormalizeDate(t), nil
}

// FormatDate formats a date as "2006-01-02".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
