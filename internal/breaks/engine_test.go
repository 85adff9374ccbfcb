package breaks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return testNow }
	}
	opts.Logger = zerolog.Nop()
	return New(opts)
}

func twoMeetings() []RawEvent {
	return []RawEvent{
		raw("a", "Standup", "2026-10-14T09:00:00Z", "2026-10-14T09:30:00Z"),
		raw("b", "Planning", "2026-10-14T10:00:00Z", "2026-10-14T10:30:00Z"),
	}
}

func TestSuggestSingleGap(t *testing.T) {
	e := newTestEngine(Options{})

	out := e.Suggest(context.Background(), Request{Scope: "u1:breaks", Events: twoMeetings()})

	require.Len(t, out, 1)
	b := out[0]
	assert.Equal(t, at(9, 32), b.Time)
	assert.Equal(t, 11, b.DurationMinutes)
	assert.Equal(t, ActivityStretch, b.Activity)
	assert.Equal(t, `11-minute Stretch between "Standup" and "Planning" (30-minute gap)`, b.Reason)
	assert.Regexp(t, `^brk_[0-9a-f]{16}$`, b.ID)
}

func TestSuggestShortGap(t *testing.T) {
	e := newTestEngine(Options{})

	out := e.Suggest(context.Background(), Request{Scope: "u1:breaks", Events: []RawEvent{
		raw("a", "One", "2026-10-14T09:00:00Z", "2026-10-14T09:30:00Z"),
		raw("b", "Two", "2026-10-14T09:35:00Z", "2026-10-14T10:00:00Z"),
	}})

	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSuggestSeveralGaps(t *testing.T) {
	e := newTestEngine(Options{})

	out := e.Suggest(context.Background(), Request{Scope: "u1:breaks", Events: []RawEvent{
		raw("a", "One", "2026-10-14T09:00:00Z", "2026-10-14T09:30:00Z"),
		raw("b", "Two", "2026-10-14T09:42:00Z", "2026-10-14T10:00:00Z"),
		raw("c", "Three", "2026-10-14T10:45:00Z", "2026-10-14T11:30:00Z"),
	}})

	require.Len(t, out, 2)
	assert.Equal(t, at(9, 32), out[0].Time)
	assert.Equal(t, 5, out[0].DurationMinutes)
	assert.Equal(t, ActivityBreathing, out[0].Activity)

	assert.Equal(t, at(10, 2), out[1].Time)
	assert.Equal(t, 15, out[1].DurationMinutes)
	assert.Equal(t, ActivityStretch, out[1].Activity)
}

func TestSuggestCalmingOverride(t *testing.T) {
	var seen []Note
	decider := DeciderFunc(func(_ context.Context, event Event, notes []Note) (bool, error) {
		seen = notes
		return event.ID == "a", nil
	})
	notes := []Note{{ID: "n1", Title: "Standup prep", Content: "tense discussion expected"}}
	assoc := associatorFunc(func(Event, []Note) []Note { return notes })

	e := newTestEngine(Options{Decider: decider, Associator: assoc})
	out := e.Suggest(context.Background(), Request{Scope: "u1:breaks", Events: twoMeetings(), Notes: notes})

	require.Len(t, out, 1)
	assert.Equal(t, ActivityMeditation, out[0].Activity)
	assert.True(t, IsCalming(out[0].Activity))
	assert.Equal(t, `11-minute Meditation to decompress after "Standup"`, out[0].Reason)
	assert.Equal(t, at(9, 32), out[0].Time, "override never changes placement")
	assert.Equal(t, notes, seen)
}

func TestSuggestOverrideFailuresFallBackToRotation(t *testing.T) {
	tests := []struct {
		name    string
		decider OverrideDecider
	}{
		{name: "error", decider: DeciderFunc(func(context.Context, Event, []Note) (bool, error) {
			return true, errors.New("llm unavailable")
		})},
		{name: "timeout", decider: DeciderFunc(func(ctx context.Context, _ Event, _ []Note) (bool, error) {
			<-ctx.Done()
			time.Sleep(10 * time.Millisecond)
			return true, nil
		})},
		{name: "panic", decider: DeciderFunc(func(context.Context, Event, []Note) (bool, error) {
			panic("boom")
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(Options{Decider: tt.decider, OverrideTimeout: 20 * time.Millisecond})
			out := e.Suggest(context.Background(), Request{Scope: "u1:breaks", Events: twoMeetings()})

			require.Len(t, out, 1)
			assert.Equal(t, ActivityStretch, out[0].Activity)
		})
	}
}

func hourlyMeetings(n int) []RawEvent {
	out := make([]RawEvent, 0, n)
	for i := 0; i < n; i++ {
		start := testNow.Add(time.Duration(i+1) * time.Hour)
		out = append(out, RawEvent{
			ID:      fmt.Sprintf("m%d", i),
			Summary: fmt.Sprintf("Meeting %d", i),
			Start:   start.Format(time.RFC3339),
			End:     start.Add(30 * time.Minute).Format(time.RFC3339),
		})
	}
	return out
}

func TestSuggestOverridePhaseSharesOneDeadline(t *testing.T) {
	var calls atomic.Int32
	decider := DeciderFunc(func(ctx context.Context, _ Event, _ []Note) (bool, error) {
		calls.Add(1)
		<-ctx.Done()
		return true, ctx.Err()
	})
	timeout := 100 * time.Millisecond
	e := newTestEngine(Options{Decider: decider, OverrideTimeout: timeout})

	started := time.Now()
	out := e.Suggest(context.Background(), Request{Scope: "u1:breaks", Events: hourlyMeetings(10)})
	elapsed := time.Since(started)

	baseline := newTestEngine(Options{}).Plan(context.Background(), hourlyMeetings(10), nil, testNow)
	assert.Equal(t, baseline, out, "timed out decisions keep the rotation")
	assert.Less(t, elapsed, 3*timeout, "override calls must not add one timeout per gap")
	assert.LessOrEqual(t, int(calls.Load()), 9)
}

func TestSuggestAppliesConcurrentDecisionsByGap(t *testing.T) {
	decider := DeciderFunc(func(_ context.Context, event Event, _ []Note) (bool, error) {
		if event.ID == "m0" {
			time.Sleep(20 * time.Millisecond)
		}
		return event.ID == "m0" || event.ID == "m5", nil
	})
	e := newTestEngine(Options{Decider: decider})

	out := e.Suggest(context.Background(), Request{Scope: "u1:breaks", Events: hourlyMeetings(8)})

	baseline := newTestEngine(Options{}).Plan(context.Background(), hourlyMeetings(8), nil, testNow)
	require.Len(t, out, 7)
	require.Len(t, baseline, 7)
	for i, b := range out {
		if i == 0 || i == 5 {
			assert.Equal(t, ActivityMeditation, b.Activity, "break %d", i)
			assert.Contains(t, b.Reason, "to decompress after", "break %d", i)
			continue
		}
		assert.Equal(t, baseline[i], b, "break %d", i)
	}
	assert.Contains(t, out[5].Reason, `"Meeting 5"`)
}

func TestSuggestUsesCache(t *testing.T) {
	var calls atomic.Int32
	decider := DeciderFunc(func(context.Context, Event, []Note) (bool, error) {
		calls.Add(1)
		return false, nil
	})
	e := newTestEngine(Options{Decider: decider})
	req := Request{Scope: "u1:breaks", Events: twoMeetings()}

	first := e.Suggest(context.Background(), req)
	second := e.Suggest(context.Background(), req)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	// A changed slot invalidates the entry.
	req.Events = append(twoMeetings(), raw("c", "Retro", "2026-10-14T11:00:00Z", "2026-10-14T11:30:00Z"))
	third := e.Suggest(context.Background(), req)
	assert.Len(t, third, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSuggestIsPermutationInvariant(t *testing.T) {
	events := []RawEvent{
		raw("a", "One", "2026-10-14T09:00:00Z", "2026-10-14T09:30:00Z"),
		raw("b", "Two", "2026-10-14T09:42:00Z", "2026-10-14T10:00:00Z"),
		raw("c", "Three", "2026-10-14T10:45:00Z", "2026-10-14T11:30:00Z"),
		raw("d", "Four", "2026-10-14T13:00:00Z", "2026-10-14T14:00:00Z"),
	}
	reversed := []RawEvent{events[3], events[2], events[1], events[0]}

	forward := newTestEngine(Options{}).Suggest(context.Background(), Request{Scope: "s", Events: events})
	backward := newTestEngine(Options{}).Suggest(context.Background(), Request{Scope: "s", Events: reversed})

	assert.Equal(t, forward, backward)
}

func TestSuggestInvariants(t *testing.T) {
	events := []RawEvent{
		raw("a", "One", "2026-10-14T07:30:00Z", "2026-10-14T08:20:00Z"),
		raw("b", "Two", "2026-10-14T08:31:00Z", "2026-10-14T09:00:00Z"),
		raw("c", "Three", "2026-10-14T09:00:00Z", "2026-10-14T09:10:00Z"),
		raw("d", "Four", "2026-10-14T09:05:00Z", "2026-10-14T09:40:00Z"),
		raw("e", "Five", "2026-10-14T12:00:00Z", "2026-10-14T12:15:00Z"),
		raw("", "Lunch", "2026-10-14T13:00:00Z", "2026-10-14T14:00:00Z"),
		raw("f", "Six", "2026-10-14T14:25:00Z", "2026-10-14T15:00:00Z"),
	}
	e := newTestEngine(Options{})
	out := e.Suggest(context.Background(), Request{Scope: "s", Events: events})
	require.NotEmpty(t, out)

	normalized := Normalize(events, testNow)
	gaps := map[string]bool{}
	for i, b := range out {
		assert.True(t, b.Time.After(testNow), "break %s is in the past", b.ID)
		assert.Greater(t, b.DurationMinutes, 0)
		assert.True(t, IsValidActivity(b.Activity))
		assert.False(t, gaps[b.GapID], "gap %s planned twice", b.GapID)
		gaps[b.GapID] = true
		for _, ev := range normalized {
			overlap := b.Time.Before(ev.End.Add(EventBuffer)) && ev.Start.Add(-EventBuffer).Before(b.End())
			assert.False(t, overlap, "break %s overlaps %s", b.ID, ev.Key())
		}
		if i > 0 {
			assert.True(t, out[i-1].Time.Before(b.Time))
		}
	}
}

func TestSuggestRecoversFromPanics(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	assoc := associatorFunc(func(Event, []Note) []Note {
		if fail.Load() {
			panic("corrupt note")
		}
		return nil
	})
	decider := DeciderFunc(func(context.Context, Event, []Note) (bool, error) { return false, nil })
	e := newTestEngine(Options{Decider: decider, Associator: assoc})
	req := Request{Scope: "u1:breaks", Events: twoMeetings()}

	out := e.Suggest(context.Background(), req)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	// The failed result was not cached.
	fail.Store(false)
	out = e.Suggest(context.Background(), req)
	assert.Len(t, out, 1)
}

func TestSuggestEmptyInput(t *testing.T) {
	e := newTestEngine(Options{})
	out := e.Suggest(context.Background(), Request{Scope: "s"})
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestPlanBypassesCache(t *testing.T) {
	store := NewMemoryCache(time.Hour)
	e := newTestEngine(Options{Store: store})

	out := e.Plan(context.Background(), twoMeetings(), nil, testNow)
	require.Len(t, out, 1)
	assert.Equal(t, 0, store.Len())

	later := e.Plan(context.Background(), twoMeetings(), nil, at(9, 45))
	assert.Empty(t, later)
}

func TestBreakJSON(t *testing.T) {
	e := newTestEngine(Options{})
	out := e.Suggest(context.Background(), Request{Scope: "s", Events: twoMeetings()})
	require.Len(t, out, 1)

	data, err := json.Marshal(out[0])
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "2026-10-14T09:32:00Z", fields["time"])
	assert.Equal(t, float64(11), fields["duration"])
	assert.Equal(t, "stretch", fields["activity"])
	assert.NotContains(t, fields, "GapID")
	assert.Len(t, fields, 5)

	var decoded Break
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, out[0].Time, decoded.Time)
	assert.Equal(t, out[0].ID, decoded.ID)
}

type associatorFunc func(Event, []Note) []Note

func (f associatorFunc) NotesFor(e Event, notes []Note) []Note { return f(e, notes) }
