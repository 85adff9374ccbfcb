package testutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/omriShneor/serenity/internal/breaks"
)

// EventBuilder builds test calendar events
type EventBuilder struct {
	id      string
	summary string
	start   time.Time
	end     time.Time
}

// NewEventBuilder creates a 30-minute event at DefaultNow
func NewEventBuilder() *EventBuilder {
	return &EventBuilder{
		id:      "evt",
		summary: "Test Meeting",
		start:   DefaultNow,
		end:     DefaultNow.Add(30 * time.Minute),
	}
}

func (b *EventBuilder) WithID(id string) *EventBuilder {
	b.id = id
	return b
}

func (b *EventBuilder) WithSummary(summary string) *EventBuilder {
	b.summary = summary
	return b
}

// At sets the start as hh:mm on the DefaultNow day, keeping the duration.
func (b *EventBuilder) At(hour, minute int) *EventBuilder {
	d := b.end.Sub(b.start)
	b.start = time.Date(DefaultNow.Year(), DefaultNow.Month(), DefaultNow.Day(), hour, minute, 0, 0, time.UTC)
	b.end = b.start.Add(d)
	return b
}

func (b *EventBuilder) For(d time.Duration) *EventBuilder {
	b.end = b.start.Add(d)
	return b
}

func (b *EventBuilder) Build() breaks.RawEvent {
	return breaks.RawEvent{
		ID:      b.id,
		Summary: b.summary,
		Start:   b.start.Format(time.RFC3339),
		End:     b.end.Format(time.RFC3339),
	}
}

// Workday returns a morning of back-to-back meetings separated by gaps of
// 30, 10 and 90 minutes.
func Workday() []breaks.RawEvent {
	return []breaks.RawEvent{
		NewEventBuilder().WithID("standup").WithSummary("Standup").At(9, 0).For(30 * time.Minute).Build(),
		NewEventBuilder().WithID("planning").WithSummary("Planning").At(10, 0).For(time.Hour).Build(),
		NewEventBuilder().WithID("review").WithSummary("Quarterly review").At(11, 10).For(50 * time.Minute).Build(),
		NewEventBuilder().WithID("lunch-talk").WithSummary("Lunch talk").At(13, 30).For(30 * time.Minute).Build(),
	}
}

// ICSFeed renders events as a minimal VCALENDAR body.
func ICSFeed(events ...breaks.RawEvent) string {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//serenity//testutil//EN"}
	for _, ev := range events {
		start, _ := time.Parse(time.RFC3339, ev.Start)
		end, _ := time.Parse(time.RFC3339, ev.End)
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+ev.ID,
			fmt.Sprintf("DTSTART:%s", start.UTC().Format("20060102T150405Z")),
			fmt.Sprintf("DTEND:%s", end.UTC().Format("20060102T150405Z")),
			"SUMMARY:"+ev.Summary,
			"END:VEVENT",
		)
	}
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}
