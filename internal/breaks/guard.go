package breaks

import (
	"sort"
	"time"
)

const (
	// EventBuffer is kept free around every event.
	EventBuffer = 2 * time.Minute
	// DedupeEpsilon collapses breaks whose starts are closer than this.
	DedupeEpsilon = 90 * time.Second
)

// Guard validates planned breaks against the events and the planning instant.
// Rejected breaks are dropped silently; an empty result is valid.
func Guard(candidates []Break, events []Event, now time.Time) []Break {
	seenGaps := make(map[string]bool, len(candidates))
	kept := make([]Break, 0, len(candidates))

	for _, b := range candidates {
		if b.DurationMinutes <= 0 || !b.Time.After(now) {
			continue
		}
		if overlapsAny(b, events) {
			continue
		}
		if b.GapID != "" {
			if seenGaps[b.GapID] {
				continue
			}
			seenGaps[b.GapID] = true
		}
		kept = append(kept, b)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Time.Before(kept[j].Time)
	})

	out := make([]Break, 0, len(kept))
	for _, b := range kept {
		if n := len(out); n > 0 && b.Time.Sub(out[n-1].Time) <= DedupeEpsilon {
			continue
		}
		out = append(out, b)
	}
	return out
}

// overlapsAny checks [b.Time, b.End) against [E.Start-buffer, E.End+buffer) for every event.
func overlapsAny(b Break, events []Event) bool {
	start, end := b.Time, b.End()
	for _, e := range events {
		lo := e.Start.Add(-EventBuffer)
		hi := e.End.Add(EventBuffer)
		if start.Before(hi) && lo.Before(end) {
			return true
		}
	}
	return false
}
