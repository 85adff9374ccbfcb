package breaks

import (
	"math"
	"time"
)

const (
	// StartOffset gives the user a moment to close out the preceding meeting.
	StartOffset = 2 * time.Minute
	// EndBuffer is kept free before the next meeting starts.
	EndBuffer = 2 * time.Minute
)

// tier maps a gap size to a duration factor and bounds.
type tier struct {
	minGap  float64
	factor  float64
	minimum int
	maximum int
}

// Ordered from the largest gap down; the first tier whose minGap fits wins.
var tiers = []tier{
	{minGap: 60, factor: 0.30, minimum: 10, maximum: 20},
	{minGap: 30, factor: 0.35, minimum: 10, maximum: 15},
	{minGap: MinGapMinutes, factor: 0.40, minimum: 5, maximum: 12},
}

// Placement is the break window chosen for one gap.
type Placement struct {
	Start           time.Time
	DurationMinutes int
}

// End returns the end of the placed window.
func (p Placement) End() time.Time {
	return p.Start.Add(time.Duration(p.DurationMinutes) * time.Minute)
}

// Place computes the single break window for g. It reports false when no
// positive whole-minute duration fits between the offsets.
func Place(g Gap) (Placement, bool) {
	t, ok := tierFor(g.DurationMinutes)
	if !ok {
		return Placement{}, false
	}

	duration := clamp(int(math.Round(g.DurationMinutes*t.factor)), t.minimum, t.maximum)

	start := g.Start.Add(StartOffset)
	latestEnd := g.End.Add(-EndBuffer)
	if fits := int(latestEnd.Sub(start) / time.Minute); duration > fits {
		duration = fits
	}
	if duration <= 0 {
		return Placement{}, false
	}

	return Placement{Start: start, DurationMinutes: duration}, true
}

func tierFor(gapMinutes float64) (tier, bool) {
	for _, t := range tiers {
		if gapMinutes >= t.minGap {
			return t, true
		}
	}
	return tier{}, false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
