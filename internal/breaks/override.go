package breaks

import (
	"context"
	"time"
)

// Note is a note-taking record that may be associated with an event.
type Note struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content,omitempty"`
	EditedAt time.Time `json:"last_edited_time"`
}

// OverrideDecider decides whether the break after event should be a calming one.
// Implementations may block on network I/O; the engine bounds each call with a timeout.
type OverrideDecider interface {
	Decide(ctx context.Context, event Event, notes []Note) (bool, error)
}

// DeciderFunc adapts a function to OverrideDecider.
type DeciderFunc func(ctx context.Context, event Event, notes []Note) (bool, error)

func (f DeciderFunc) Decide(ctx context.Context, event Event, notes []Note) (bool, error) {
	return f(ctx, event, notes)
}

type neverOverride struct{}

func (neverOverride) Decide(context.Context, Event, []Note) (bool, error) {
	return false, nil
}

// NeverOverride is the default decider: rotation always wins.
var NeverOverride OverrideDecider = neverOverride{}

// Associator selects the notes relevant to an event.
type Associator interface {
	NotesFor(event Event, notes []Note) []Note
}
