package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/omriShneor/serenity/internal/breaks"
	"github.com/omriShneor/serenity/internal/timeutil"
)

// MemorySource serves a replaceable in-memory event list. It backs the test
// server and offline tooling.
type MemorySource struct {
	name string

	mu     sync.RWMutex
	events []breaks.RawEvent
}

func NewMemorySource(name string) *MemorySource {
	return &MemorySource{name: name}
}

func (m *MemorySource) Name() string {
	return m.name
}

// Set replaces the served events.
func (m *MemorySource) Set(events []breaks.RawEvent) {
	cp := make([]breaks.RawEvent, len(events))
	copy(cp, events)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = cp
}

// Upcoming returns the stored events that have not ended by now. Events with
// unparseable times are passed through for the engine to drop.
func (m *MemorySource) Upcoming(_ context.Context, now time.Time, horizon time.Duration) ([]breaks.RawEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := now.Add(horizon)
	out := make([]breaks.RawEvent, 0, len(m.events))
	for _, ev := range m.events {
		start, errStart := timeutil.ParseInstant(ev.Start)
		end, errEnd := timeutil.ParseInstant(ev.End)
		if errStart == nil && errEnd == nil && (!end.After(now) || !start.Before(limit)) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
