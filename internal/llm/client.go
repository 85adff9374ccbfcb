package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a client has no credentials.
var ErrNotConfigured = errors.New("llm client not configured")

// Client completes a single-turn prompt and returns the raw model text.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
