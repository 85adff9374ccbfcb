package ics

import (
	"context"
	"fmt"
	"time"

	"github.com/omriShneor/serenity/internal/breaks"
)

// Source serves the occurrences of one feed to the schedule.
type Source struct {
	Fetcher *Fetcher
	Feed    Feed
}

func (s *Source) Name() string {
	return "ics:" + s.Feed.ID
}

func (s *Source) Upcoming(ctx context.Context, now time.Time, horizon time.Duration) ([]breaks.RawEvent, error) {
	body, err := s.Fetcher.Fetch(ctx, s.Feed)
	if err != nil {
		return nil, err
	}
	events, err := Parse(body)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", s.Feed.ID, err)
	}
	return Expand(events, now, now.Add(horizon))
}
