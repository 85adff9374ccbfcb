package breaks

import (
	"sort"
	"time"

	"github.com/omriShneor/serenity/internal/timeutil"
)

// RawEvent is a calendar event as delivered by a calendar collaborator.
// Start and End are ISO-8601 strings, with or without an explicit offset.
type RawEvent struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Event is a normalized calendar event. Start and End are UTC and Start < End.
type Event struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Key identifies the event for gap identity and fingerprinting.
// Events without an id get a synthetic key built from title and start.
func (e Event) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return "synthetic:" + e.Title + "@" + timeutil.FormatUTC(e.Start)
}

// Normalize parses, filters and sorts raw events for planning at now.
//
// Records whose start or end cannot be parsed, whose end is not after their start,
// or which have already ended are dropped. The result is ordered by (start, id).
func Normalize(raw []RawEvent, now time.Time) []Event {
	events := make([]Event, 0, len(raw))
	for _, r := range raw {
		start, err := timeutil.ParseInstant(r.Start)
		if err != nil {
			continue
		}
		end, err := timeutil.ParseInstant(r.End)
		if err != nil {
			continue
		}
		if !end.After(start) || !end.After(now) {
			continue
		}
		events = append(events, Event{
			ID:    r.ID,
			Title: r.Summary,
			Start: start,
			End:   end,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		if ak, bk := a.Key(), b.Key(); ak != bk {
			return ak < bk
		}
		return a.End.Before(b.End)
	})

	return events
}
