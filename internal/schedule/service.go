package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/omriShneor/serenity/internal/breaks"
	"github.com/omriShneor/serenity/internal/database"
	"github.com/omriShneor/serenity/internal/timeutil"
)

const (
	DefaultHorizon   = 7 * 24 * time.Hour
	DefaultMaxEvents = 10
	DefaultMaxNotes  = 10

	// DefaultUser owns requests that carry no user id.
	DefaultUser = "default"
)

// BreakScope is the cache scope every view of a user's breaks shares, so the
// schedule, the break list and reminders agree on one planned answer.
func BreakScope(user string) string {
	return user + ":breaks"
}

// EventSource yields upcoming events from one calendar.
type EventSource interface {
	Name() string
	Upcoming(ctx context.Context, now time.Time, horizon time.Duration) ([]breaks.RawEvent, error)
}

// NoteStore lists the notes that may feed calming decisions.
type NoteStore interface {
	ListRecentNotes(limit int) ([]database.Note, error)
}

// Engine is the break planner the schedule delegates to.
type Engine interface {
	Suggest(ctx context.Context, req breaks.Request) []breaks.Break
}

// CacheClearer is implemented by break stores that can be flushed.
type CacheClearer interface {
	Clear()
}

// Schedule is the combined view of events, notes and suggested breaks.
type Schedule struct {
	Events []breaks.RawEvent `json:"events"`
	Notes  []database.Note   `json:"pages"`
	Breaks []breaks.Break    `json:"break_suggestions"`
}

// Request scopes one Build call.
type Request struct {
	Scope     string
	MaxEvents int
	MaxNotes  int
}

type Options struct {
	Sources []EventSource
	Notes   NoteStore
	Engine  Engine
	Cache   CacheClearer
	Horizon time.Duration
	Clock   func() time.Time
	Logger  zerolog.Logger
}

// Service assembles schedules from every configured source.
type Service struct {
	sources []EventSource
	notes   NoteStore
	engine  Engine
	cache   CacheClearer
	horizon time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

func NewService(opts Options) *Service {
	s := &Service{
		sources: opts.Sources,
		notes:   opts.Notes,
		engine:  opts.Engine,
		cache:   opts.Cache,
		horizon: opts.Horizon,
		now:     opts.Clock,
		log:     opts.Logger.With().Str("component", "schedule").Logger(),
	}
	if s.horizon <= 0 {
		s.horizon = DefaultHorizon
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Build gathers events and notes and plans breaks. A failing source or note
// store is logged and skipped; Build itself never fails.
func (s *Service) Build(ctx context.Context, req Request) *Schedule {
	if req.MaxEvents <= 0 {
		req.MaxEvents = DefaultMaxEvents
	}
	if req.MaxNotes <= 0 {
		req.MaxNotes = DefaultMaxNotes
	}
	now := s.now()

	events := s.collectEvents(ctx, now)
	if len(events) > req.MaxEvents {
		events = events[:req.MaxEvents]
	}

	var notes []database.Note
	if s.notes != nil {
		var err error
		notes, err = s.notes.ListRecentNotes(req.MaxNotes)
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to load notes")
			notes = nil
		}
	}

	out := &Schedule{
		Events: events,
		Notes:  notes,
		Breaks: []breaks.Break{},
	}
	if out.Events == nil {
		out.Events = []breaks.RawEvent{}
	}
	if out.Notes == nil {
		out.Notes = []database.Note{}
	}

	if s.engine != nil && len(events) > 0 {
		out.Breaks = s.engine.Suggest(ctx, breaks.Request{
			Scope:  req.Scope,
			Events: events,
			Notes:  ToBreakNotes(notes),
		})
	}
	return out
}

// ClearCache drops every memoized break list.
func (s *Service) ClearCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

type sourceResult struct {
	name   string
	events []breaks.RawEvent
	err    error
}

func (s *Service) collectEvents(ctx context.Context, now time.Time) []breaks.RawEvent {
	results := make([]sourceResult, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src EventSource) {
			defer wg.Done()
			events, err := src.Upcoming(ctx, now, s.horizon)
			results[i] = sourceResult{name: src.Name(), events: events, err: err}
		}(i, src)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var merged []breaks.RawEvent
	for _, r := range results {
		if r.err != nil {
			s.log.Warn().Err(r.err).Str("source", r.name).Msg("failed to fetch events")
			continue
		}
		for _, ev := range r.events {
			if ev.ID != "" {
				if seen[ev.ID] {
					continue
				}
				seen[ev.ID] = true
			}
			merged = append(merged, ev)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, errA := timeutil.ParseInstant(merged[i].Start)
		b, errB := timeutil.ParseInstant(merged[j].Start)
		if errA != nil || errB != nil {
			return errA == nil && errB != nil
		}
		return a.Before(b)
	})
	return merged
}

// ToBreakNotes converts stored notes to the engine's note type.
func ToBreakNotes(notes []database.Note) []breaks.Note {
	out := make([]breaks.Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, breaks.Note{
			ID:       n.ID,
			Title:    n.Title,
			Content:  n.Content,
			EditedAt: n.LastEditedAt,
		})
	}
	return out
}
