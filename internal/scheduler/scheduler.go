package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/omriShneor/serenity/internal/breaks"
	"github.com/omriShneor/serenity/internal/schedule"
)

const (
	DefaultPurgeSpec    = "@every 1h"
	DefaultReminderSpec = "@every 1m"
)

// Purger drops expired cache entries and reports how many went.
type Purger interface {
	PurgeExpired() int
}

// ScheduleBuilder assembles the current schedule.
type ScheduleBuilder interface {
	Build(ctx context.Context, req schedule.Request) *schedule.Schedule
}

// Reminder announces upcoming breaks.
type Reminder interface {
	NotifyUpcoming(ctx context.Context, upcoming []breaks.Break, now time.Time) int
}

type Options struct {
	Cache        Purger
	Schedule     ScheduleBuilder
	Reminders    Reminder
	PurgeSpec    string
	ReminderSpec string
	Clock        func() time.Time
	Logger       zerolog.Logger
}

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	cron      *cron.Cron
	cache     Purger
	schedule  ScheduleBuilder
	reminders Reminder
	now       func() time.Time
	log       zerolog.Logger
}

// New registers the jobs. A job whose collaborator is nil is not scheduled.
func New(opts Options) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		cache:     opts.Cache,
		schedule:  opts.Schedule,
		reminders: opts.Reminders,
		now:       opts.Clock,
		log:       opts.Logger.With().Str("component", "scheduler").Logger(),
	}
	if s.now == nil {
		s.now = time.Now
	}

	purgeSpec := opts.PurgeSpec
	if purgeSpec == "" {
		purgeSpec = DefaultPurgeSpec
	}
	reminderSpec := opts.ReminderSpec
	if reminderSpec == "" {
		reminderSpec = DefaultReminderSpec
	}

	if s.cache != nil {
		if _, err := s.cron.AddFunc(purgeSpec, s.PurgeCache); err != nil {
			return nil, fmt.Errorf("invalid cache purge schedule %q: %w", purgeSpec, err)
		}
	}
	if s.schedule != nil && s.reminders != nil {
		if _, err := s.cron.AddFunc(reminderSpec, func() { s.SendReminders(context.Background()) }); err != nil {
			return nil, fmt.Errorf("invalid reminder schedule %q: %w", reminderSpec, err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// PurgeCache removes expired break lists.
func (s *Scheduler) PurgeCache() {
	if n := s.cache.PurgeExpired(); n > 0 {
		s.log.Debug().Int("purged", n).Msg("expired break lists purged")
	}
}

// SendReminders plans the current schedule and announces breaks that are due.
func (s *Scheduler) SendReminders(ctx context.Context) int {
	sched := s.schedule.Build(ctx, schedule.Request{Scope: schedule.BreakScope(schedule.DefaultUser)})
	sent := s.reminders.NotifyUpcoming(ctx, sched.Breaks, s.now())
	if sent > 0 {
		s.log.Info().Int("sent", sent).Msg("break reminders sent")
	}
	return sent
}
