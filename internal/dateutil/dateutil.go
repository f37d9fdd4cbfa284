package dateutil

import (
	"fmt"
	"time"
)

// KeyLayout is the canonical YYYY-MM-DD form used for comparison,
// storage and map keys throughout the app.
const KeyLayout = "2006-01-02"

var Weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var MonthsShort = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// ToKey renders the local calendar fields of t as a canonical date key.
// Local fields, not UTC, so the key matches what the user sees as "today".
func ToKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseKey is the inverse of ToKey. The returned time is midnight local.
func ParseKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(KeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// FormatShort renders a canonical date key as e.g. "Jan 5".
func FormatShort(key string) (string, error) {
	t, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %d", MonthsShort[int(t.Month())-1], t.Day()), nil
}
