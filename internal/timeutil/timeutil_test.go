package timeutil

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstant(t *testing.T) {
	want := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{name: "rfc3339 zulu", input: "2026-10-14T09:00:00Z", expected: want},
		{name: "lowercase zulu", input: "2026-10-14T09:00:00z", expected: want},
		{name: "positive offset", input: "2026-10-14T14:30:00+05:30", expected: want},
		{name: "negative offset", input: "2026-10-14T03:00:00-06:00", expected: want},
		{name: "compact offset", input: "2026-10-14T11:00:00+0200", expected: want},
		{name: "fractional seconds", input: "2026-10-14T09:00:00.000Z", expected: want},
		{name: "minutes only with offset", input: "2026-10-14T09:00Z", expected: want},
		{name: "no offset assumes utc", input: "2026-10-14T09:00:00", expected: want},
		{name: "no offset fractional", input: "2026-10-14T09:00:00.000", expected: want},
		{name: "space separator", input: "2026-10-14 09:00:00", expected: want},
		{name: "basic format", input: "20261014T090000Z", expected: want},
		{name: "surrounding whitespace", input: "  2026-10-14T09:00:00Z ", expected: want},
		{name: "date only", input: "2026-10-14", expected: time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstant(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseInstantRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "tomorrow", "2026-13-40T99:00:00Z", "09:00"} {
		_, err := ParseInstant(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseDateTimeInTimezone(t *testing.T) {
	got, fallback, err := ParseDateTime("2026-10-14T09:00:00", "America/New_York")
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, 13, got.UTC().Hour())

	_, fallback, err = ParseDateTime("2026-10-14T09:00:00", "Not/AZone")
	require.NoError(t, err)
	assert.True(t, fallback)
}

func TestFormatUTC(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	assert.Equal(t, "2026-10-14T09:32:00Z", FormatUTC(time.Date(2026, 10, 14, 11, 32, 0, 0, loc)))
}
