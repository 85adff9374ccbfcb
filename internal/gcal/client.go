package gcal

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client wraps the Google Calendar API client
type Client struct {
	service *calendar.Service
	log     zerolog.Logger
}

// NewClient builds a calendar client from stored credentials. Acquiring the
// first token is done out of band; a missing token is an error.
func NewClient(ctx context.Context, credentialsFile string, store TokenStore, logger zerolog.Logger) (*Client, error) {
	config, err := loadOAuthConfig(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth config: %w", err)
	}

	token, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if token == nil {
		return nil, fmt.Errorf("no stored token")
	}

	log := logger.With().Str("component", "gcal").Logger()
	source := newPersistingTokenSource(config.TokenSource(ctx, token), store, token, log)

	service, err := calendar.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, source)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{service: service, log: log}, nil
}

// NewClientWithService wraps an already configured service.
func NewClientWithService(service *calendar.Service, logger zerolog.Logger) *Client {
	return &Client{service: service, log: logger.With().Str("component", "gcal").Logger()}
}
