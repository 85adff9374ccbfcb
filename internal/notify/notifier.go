package notify

import (
	"context"
	"time"

	"github.com/omriShneor/serenity/internal/breaks"
)

// Reminder is one upcoming break to announce, planned relative to Now.
type Reminder struct {
	Break breaks.Break
	Now   time.Time
}

// Notifier delivers break reminders to a recipient
type Notifier interface {
	Send(ctx context.Context, reminder Reminder, recipient string) error
	// Name returns the notifier type name (for logging)
	Name() string
	// IsConfigured returns true if the notifier has server-side config
	IsConfigured() bool
}
