package breaks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2026, 10, 14, hour, minute, 0, 0, time.UTC)
}

func raw(id, summary, start, end string) RawEvent {
	return RawEvent{ID: id, Summary: summary, Start: start, End: end}
}

func TestNormalize(t *testing.T) {
	t.Run("drops unparseable and past events", func(t *testing.T) {
		events := Normalize([]RawEvent{
			raw("ok", "Standup", "2026-10-14T09:00:00Z", "2026-10-14T09:30:00Z"),
			raw("bad-start", "Broken", "not a time", "2026-10-14T10:00:00Z"),
			raw("bad-end", "Broken", "2026-10-14T10:00:00Z", ""),
			raw("past", "Yesterday", "2026-10-13T09:00:00Z", "2026-10-13T10:00:00Z"),
			raw("ended-now", "Early", "2026-10-14T07:00:00Z", "2026-10-14T08:00:00Z"),
			raw("inverted", "Backwards", "2026-10-14T11:00:00Z", "2026-10-14T10:00:00Z"),
		}, testNow)

		require.Len(t, events, 1)
		assert.Equal(t, "ok", events[0].ID)
		assert.Equal(t, "Standup", events[0].Title)
	})

	t.Run("keeps in-progress events", func(t *testing.T) {
		events := Normalize([]RawEvent{
			raw("running", "Offsite", "2026-10-14T07:30:00Z", "2026-10-14T08:30:00Z"),
		}, testNow)
		require.Len(t, events, 1)
	})

	t.Run("converts offsets to utc", func(t *testing.T) {
		events := Normalize([]RawEvent{
			raw("tz", "Sync", "2026-10-14T11:00:00+02:00", "2026-10-14T11:30:00+02:00"),
		}, testNow)
		require.Len(t, events, 1)
		assert.Equal(t, at(9, 0), events[0].Start)
		assert.Equal(t, time.UTC, events[0].Start.Location())
	})

	t.Run("sorts by start then id", func(t *testing.T) {
		input := []RawEvent{
			raw("c", "Third", "2026-10-14T11:00:00Z", "2026-10-14T11:30:00Z"),
			raw("b", "Tie B", "2026-10-14T09:00:00Z", "2026-10-14T09:30:00Z"),
			raw("a", "Tie A", "2026-10-14T09:00:00Z", "2026-10-14T09:45:00Z"),
		}
		events := Normalize(input, testNow)

		ids := make([]string, 0, len(events))
		for _, e := range events {
			ids = append(ids, e.ID)
		}
		assert.Equal(t, []string{"a", "b", "c"}, ids)

		reversed := []RawEvent{input[2], input[1], input[0]}
		assert.Equal(t, events, Normalize(reversed, testNow))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Normalize(nil, testNow))
	})
}

func TestEventKey(t *testing.T) {
	assert.Equal(t, "evt-1", Event{ID: "evt-1", Title: "x", Start: at(9, 0)}.Key())
	assert.Equal(t, "synthetic:Lunch@2026-10-14T12:00:00Z", Event{Title: "Lunch", Start: at(12, 0)}.Key())
}

func TestDetectGaps(t *testing.T) {
	t.Run("zero or one event", func(t *testing.T) {
		assert.Empty(t, DetectGaps(nil))
		assert.Empty(t, DetectGaps([]Event{{ID: "a", Start: at(9, 0), End: at(10, 0)}}))
	})

	t.Run("consecutive gaps above threshold", func(t *testing.T) {
		events := []Event{
			{ID: "a", Start: at(9, 0), End: at(9, 30)},
			{ID: "b", Start: at(9, 35), End: at(10, 0)},
			{ID: "c", Start: at(10, 10), End: at(11, 0)},
			{ID: "d", Start: at(12, 0), End: at(12, 30)},
		}
		gaps := DetectGaps(events)
		require.Len(t, gaps, 2)

		assert.Equal(t, "b->c", gaps[0].ID())
		assert.Equal(t, 1, gaps[0].Index)
		assert.Equal(t, 10.0, gaps[0].DurationMinutes)
		assert.Equal(t, at(10, 0), gaps[0].Start)
		assert.Equal(t, at(10, 10), gaps[0].End)

		assert.Equal(t, "c->d", gaps[1].ID())
		assert.Equal(t, 2, gaps[1].Index)
		assert.Equal(t, 60.0, gaps[1].DurationMinutes)
	})

	t.Run("overlapping events produce no gap", func(t *testing.T) {
		events := []Event{
			{ID: "a", Start: at(9, 0), End: at(10, 0)},
			{ID: "b", Start: at(9, 30), End: at(10, 30)},
		}
		assert.Empty(t, DetectGaps(events))
	})
}
