package breaks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gapOf(minutes int) Gap {
	start := at(9, 0)
	return Gap{
		AfterEventID:    "a",
		BeforeEventID:   "b",
		Start:           start,
		End:             start.Add(time.Duration(minutes) * time.Minute),
		DurationMinutes: float64(minutes),
	}
}

func TestPlace(t *testing.T) {
	tests := []struct {
		name     string
		gap      int
		expected int
	}{
		{name: "minimum gap", gap: 10, expected: 5},
		{name: "small gap rounds", gap: 12, expected: 5},
		{name: "small tier factor", gap: 25, expected: 10},
		{name: "small tier upper bound", gap: 29, expected: 12},
		{name: "medium tier half rounds up", gap: 30, expected: 11},
		{name: "medium tier", gap: 40, expected: 14},
		{name: "medium tier clamps", gap: 59, expected: 15},
		{name: "large tier", gap: 60, expected: 18},
		{name: "large tier clamps", gap: 180, expected: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gapOf(tt.gap)
			p, ok := Place(g)
			require.True(t, ok)
			assert.Equal(t, tt.expected, p.DurationMinutes)
			assert.Equal(t, g.Start.Add(StartOffset), p.Start)
			assert.False(t, p.End().After(g.End.Add(-EndBuffer)))
		})
	}
}

func TestPlaceBelowThreshold(t *testing.T) {
	_, ok := Place(gapOf(9))
	assert.False(t, ok)
}

func TestPlaceShrinksToFit(t *testing.T) {
	// A hand-built gap whose tier minimum cannot fit between the offsets.
	g := Gap{Start: at(9, 0), End: at(9, 8), DurationMinutes: 10}
	p, ok := Place(g)
	require.True(t, ok)
	assert.Equal(t, 4, p.DurationMinutes)
	assert.Equal(t, at(9, 6), p.End())

	g = Gap{Start: at(9, 0), End: at(9, 4), DurationMinutes: 10}
	_, ok = Place(g)
	assert.False(t, ok)
}

func TestSelectActivity(t *testing.T) {
	assert.Equal(t, ActivityBreathing, SelectActivity(0, 5))
	assert.Equal(t, ActivityHydrate, SelectActivity(1, 7))
	assert.Equal(t, ActivityStretch, SelectActivity(0, 11))
	assert.Equal(t, ActivityStretch, SelectActivity(6, 8))
	assert.Equal(t, ActivityWalk, SelectActivity(0, 15))
	assert.Equal(t, ActivityRest, SelectActivity(7, 20))
	assert.Equal(t, ActivityRest, SelectActivity(0, 25))

	// Same inputs, same output.
	for i := 0; i < 20; i++ {
		assert.Equal(t, SelectActivity(i, 12), SelectActivity(i, 12))
	}
}

func TestRotationLengths(t *testing.T) {
	assert.Len(t, shortRotation, 5)
	assert.Len(t, mediumRotation, 6)
	assert.Len(t, longRotation, 8)
	assert.Len(t, extendedRotation, 5)
}

func TestCalmingActivity(t *testing.T) {
	assert.Equal(t, ActivityBreathing, CalmingActivity(5))
	assert.Equal(t, ActivityMeditation, CalmingActivity(15))
	assert.True(t, IsCalming(CalmingActivity(5)))
	assert.True(t, IsCalming(CalmingActivity(15)))
}
