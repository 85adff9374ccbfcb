package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/omriShneor/serenity/internal/breaks"
)

// DefaultLeadTime is how far ahead of a break its reminder goes out.
const DefaultLeadTime = 5 * time.Minute

// Service sends one reminder per upcoming break.
type Service struct {
	emailNotifier Notifier
	recipient     string
	leadTime      time.Duration
	log           zerolog.Logger

	mu   sync.Mutex
	sent map[string]time.Time // break id -> break end
}

func NewService(emailNotifier Notifier, recipient string, leadTime time.Duration, logger zerolog.Logger) *Service {
	if leadTime <= 0 {
		leadTime = DefaultLeadTime
	}
	return &Service{
		emailNotifier: emailNotifier,
		recipient:     recipient,
		leadTime:      leadTime,
		log:           logger.With().Str("component", "notify").Logger(),
		sent:          make(map[string]time.Time),
	}
}

// IsEmailAvailable returns true if email reminders can be sent
func (s *Service) IsEmailAvailable() bool {
	return s.emailNotifier != nil && s.emailNotifier.IsConfigured() && s.recipient != ""
}

// NotifyUpcoming sends a reminder for each break starting within the lead time
// that has not been announced yet. Errors are logged and the break is retried
// on the next call. It returns the number of reminders sent.
func (s *Service) NotifyUpcoming(ctx context.Context, upcoming []breaks.Break, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, end := range s.sent {
		if !end.After(now) {
			delete(s.sent, id)
		}
	}

	if !s.IsEmailAvailable() {
		return 0
	}

	sent := 0
	for _, b := range upcoming {
		if _, ok := s.sent[b.ID]; ok {
			continue
		}
		if b.Time.Before(now) || b.Time.Sub(now) > s.leadTime {
			continue
		}

		err := s.emailNotifier.Send(ctx, Reminder{Break: b, Now: now}, s.recipient)
		if err != nil {
			s.log.Warn().Err(err).Str("break_id", b.ID).Str("notifier", s.emailNotifier.Name()).Msg("reminder failed")
			continue
		}
		s.sent[b.ID] = b.End()
		sent++
		s.log.Info().Str("break_id", b.ID).Str("activity", string(b.Activity)).Msg("reminder sent")
	}
	return sent
}

// Pending returns the number of remembered reminders.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}
