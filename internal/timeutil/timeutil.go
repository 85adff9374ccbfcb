package timeutil

import (
	"fmt"
	"strings"
	"time"
)

var defaultLocation = time.UTC

// ResolveLocation returns the user's location with UTC fallback.
func ResolveLocation(timezone string) (*time.Location, bool) {
	if timezone == "" {
		return defaultLocation, true
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return defaultLocation, true
	}
	return loc, false
}

// Layouts carrying an explicit offset. time.RFC3339 also accepts fractional seconds.
var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"20060102T150405Z0700",
}

// Layouts without an offset; they are read in the fallback location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"20060102T150405",
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 timestamp and returns it in UTC.
// Values without an explicit offset are taken to be UTC.
func ParseInstant(value string) (time.Time, error) {
	t, _, err := ParseDateTime(value, "")
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ParseDateTime parses a datetime with an explicit offset, or a local layout in the provided timezone.
// The returned bool reports whether the timezone fell back to UTC.
func ParseDateTime(value, timezone string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, fmt.Errorf("time value is required")
	}

	// A lowercase designator is still ISO-8601.
	if strings.HasSuffix(value, "z") {
		value = value[:len(value)-1] + "Z"
	}

	// If timezone/offset exists, preserve it.
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, false, nil
		}
	}

	loc, fallback := ResolveLocation(timezone)
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, fallback, nil
		}
	}

	return time.Time{}, fallback, fmt.Errorf("unable to parse time: %s", value)
}

// FormatUTC renders t as an ISO-8601 UTC string ending in "Z".
func FormatUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
