package domain

import (
	"fmt"
	"strings"
	"time"
)

// secondsPerDay bounds the valid range of a TimeOfDay.
const secondsPerDay = 24 * 60 * 60

// TimeOfDay is a wall-clock time with second precision, stored as seconds
// since midnight. Values compare with the ordinary integer operators.
// It carries no date and no zone.
type TimeOfDay int32

// NewTimeOfDay builds a TimeOfDay from hour, minute and second components.
func NewTimeOfDay(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("time of day %02d:%02d:%02d out of range", hour, minute, second)
	}
	return TimeOfDay(hour*3600 + minute*60 + second), nil
}

// MustTimeOfDay is like ParseTimeOfDay but panics on error.
// Intended for constants and tests.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS" with zero-padded two-digit fields.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time of day %q: want HH:MM or HH:MM:SS", s)
	}

	var fields [3]int
	for i, p := range parts {
		if len(p) != 2 || !isDigit(p[0]) || !isDigit(p[1]) {
			return 0, fmt.Errorf("invalid time of day %q: want HH:MM or HH:MM:SS", s)
		}
		fields[i] = int(p[0]-'0')*10 + int(p[1]-'0')
	}

	t, err := NewTimeOfDay(fields[0], fields[1], fields[2])
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t, nil
}

// TimeOfDayFromDuration converts a duration since midnight, as returned by
// database drivers for TIME columns.
func TimeOfDayFromDuration(d time.Duration) (TimeOfDay, error) {
	secs := int64(d / time.Second)
	if secs < 0 || secs >= secondsPerDay {
		return 0, fmt.Errorf("time of day %s out of range", d)
	}
	return TimeOfDay(secs), nil
}

// Duration returns the offset from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t) * time.Second
}

// Hour returns the hour component (0-23).
func (t TimeOfDay) Hour() int { return int(t) / 3600 }

// Minute returns the minute component (0-59).
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }

// Second returns the second component (0-59).
func (t TimeOfDay) Second() int { return int(t) % 60 }

// Before reports whether t is strictly earlier than u.
func (t TimeOfDay) Before(u TimeOfDay) bool { return t < u }

// String formats t as "HH:MM:SS".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// MarshalText implements encoding.TextMarshaler, so TimeOfDay values
// travel as "HH:MM:SS" strings in JSON.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
