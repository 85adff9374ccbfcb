package breaks

import "time"

// MinGapMinutes is the smallest free interval that is considered for a break.
const MinGapMinutes = 10

// Gap is the free interval between two chronologically adjacent events.
type Gap struct {
	AfterEventID    string
	BeforeEventID   string
	Start           time.Time
	End             time.Time
	DurationMinutes float64
	// Index is the position of the preceding event in the sorted event list.
	Index int
}

// ID is the ordered pair of adjacent event keys.
func (g Gap) ID() string {
	return g.AfterEventID + "->" + g.BeforeEventID
}

// DetectGaps returns the planning candidates between consecutive events.
// Events must already be normalized. Nothing is emitted before the first or after the last event.
func DetectGaps(events []Event) []Gap {
	if len(events) < 2 {
		return nil
	}

	var gaps []Gap
	for i := 0; i < len(events)-1; i++ {
		prev, next := events[i], events[i+1]
		minutes := next.Start.Sub(prev.End).Minutes()
		if minutes < MinGapMinutes {
			continue
		}
		gaps = append(gaps, Gap{
			AfterEventID:    prev.Key(),
			BeforeEventID:   next.Key(),
			Start:           prev.End,
			End:             next.Start,
			DurationMinutes: minutes,
			Index:           i,
		})
	}
	return gaps
}
