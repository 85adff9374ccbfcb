package ics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/omriShneor/serenity/internal/breaks"
)

// MaxOccurrencesPerEvent caps runaway recurrence rules.
const MaxOccurrencesPerEvent = 500

// Expand turns parsed components into timed occurrences intersecting [from, to).
// All-day and cancelled events are skipped; each occurrence gets its own id, uid@start.
func Expand(events []VEvent, from, to time.Time) ([]breaks.RawEvent, error) {
	if to.Before(from) {
		return nil, errors.New("expand: range end is before range start")
	}

	overrides := make(map[string][]VEvent)
	for _, ev := range events {
		if ev.IsOverride() {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
		}
	}

	var out []breaks.RawEvent
	for _, ev := range events {
		if ev.IsOverride() || ev.AllDay || ev.Status == "CANCELLED" {
			continue
		}
		occurrences, err := expandEvent(ev, overrides[ev.UID], from, to)
		if err != nil {
			continue
		}
		out = append(out, occurrences...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func expandEvent(ev VEvent, overrides []VEvent, from, to time.Time) ([]breaks.RawEvent, error) {
	if ev.RRule == "" {
		if o, ok := findOverride(overrides, ev.Start); ok {
			ev.Summary, ev.Start, ev.End, ev.Status = o.Summary, o.Start, o.End, o.Status
		}
		if ev.Status == "CANCELLED" || !overlaps(ev.Start, ev.End, from, to) {
			return nil, nil
		}
		return []breaks.RawEvent{occurrence(ev.UID, ev.Summary, ev.Start, ev.End, ev.Start)}, nil
	}

	rule, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		return nil, fmt.Errorf("invalid RRULE for %s: %w", ev.UID, err)
	}
	rule.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	duration := ev.End.Sub(ev.Start)
	// Occurrences that started before from may still be running.
	starts := set.Between(from.Add(-duration).In(ev.Start.Location()), to.In(ev.Start.Location()), true)
	if len(starts) > MaxOccurrencesPerEvent {
		starts = starts[:MaxOccurrencesPerEvent]
	}

	out := make([]breaks.RawEvent, 0, len(starts))
	for _, start := range starts {
		summary, s, e := ev.Summary, start, start.Add(duration)
		if o, ok := findOverride(overrides, start); ok {
			if o.Status == "CANCELLED" {
				continue
			}
			summary, s, e = o.Summary, o.Start, o.End
		}
		if !overlaps(s, e, from, to) {
			continue
		}
		out = append(out, occurrence(ev.UID, summary, s, e, start))
	}
	return out, nil
}

func findOverride(overrides []VEvent, start time.Time) (VEvent, bool) {
	for _, o := range overrides {
		if o.Recurrence != nil && o.Recurrence.Equal(start) {
			return o, true
		}
	}
	return VEvent{}, false
}

// occurrence keys the instance by its original start so moved instances keep their id.
func occurrence(uid, summary string, start, end, original time.Time) breaks.RawEvent {
	return breaks.RawEvent{
		ID:      uid + "@" + original.UTC().Format(time.RFC3339),
		Summary: summary,
		Start:   start.UTC().Format(time.RFC3339),
		End:     end.UTC().Format(time.RFC3339),
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
