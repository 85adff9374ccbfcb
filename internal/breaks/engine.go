package breaks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultOverrideTimeout bounds the override phase of one planning run.
const DefaultOverrideTimeout = 8 * time.Second

const maxConcurrentDecisions = 4

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Store           Store
	Decider         OverrideDecider
	Associator      Associator
	Clock           func() time.Time
	Logger          zerolog.Logger
	OverrideTimeout time.Duration
}

// Request is one break computation.
type Request struct {
	// Scope is the cache key, typically one per (user, purpose).
	Scope  string
	Events []RawEvent
	// Notes feed the override decider through the Associator.
	Notes []Note
}

// Engine plans breaks around calendar events.
type Engine struct {
	store           Store
	decider         OverrideDecider
	associator      Associator
	now             func() time.Time
	log             zerolog.Logger
	overrideTimeout time.Duration
}

// New creates an Engine.
func New(opts Options) *Engine {
	e := &Engine{
		store:           opts.Store,
		decider:         opts.Decider,
		associator:      opts.Associator,
		now:             opts.Clock,
		log:             opts.Logger.With().Str("component", "breaks").Logger(),
		overrideTimeout: opts.OverrideTimeout,
	}
	if e.store == nil {
		e.store = NewMemoryCache(DefaultCacheTTL)
	}
	if e.decider == nil {
		e.decider = NeverOverride
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.overrideTimeout <= 0 {
		e.overrideTimeout = DefaultOverrideTimeout
	}
	return e
}

// Suggest returns the breaks for req. It never fails: any internal failure
// yields an empty list, which is not cached.
func (e *Engine) Suggest(ctx context.Context, req Request) (out []Break) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("scope", req.Scope).Interface("panic", r).Msg("break planning failed")
			out = []Break{}
		}
	}()

	now := e.now().UTC()
	events := Normalize(req.Events, now)
	fingerprint := Fingerprint(events)

	if cached, ok := e.store.Get(req.Scope, fingerprint); ok {
		e.log.Debug().Str("scope", req.Scope).Str("fingerprint", fingerprint).Int("breaks", len(cached)).Msg("break cache hit")
		return cached
	}

	breaks := e.plan(ctx, events, req.Notes, now)
	e.store.Set(req.Scope, breaks, fingerprint)

	e.log.Debug().
		Str("scope", req.Scope).
		Str("fingerprint", fingerprint).
		Int("events", len(events)).
		Int("breaks", len(breaks)).
		Msg("breaks computed")
	return breaks
}

// Plan computes breaks for events at now without touching the cache.
func (e *Engine) Plan(ctx context.Context, raw []RawEvent, notes []Note, now time.Time) []Break {
	now = now.UTC()
	return e.plan(ctx, Normalize(raw, now), notes, now)
}

func (e *Engine) plan(ctx context.Context, events []Event, notes []Note, now time.Time) []Break {
	gaps := DetectGaps(events)

	type slot struct {
		gap       Gap
		placement Placement
	}
	slots := make([]slot, 0, len(gaps))
	preceding := make([]Event, 0, len(gaps))
	for _, g := range gaps {
		p, ok := Place(g)
		if !ok {
			continue
		}
		slots = append(slots, slot{gap: g, placement: p})
		preceding = append(preceding, events[g.Index])
	}

	calm := e.decideCalming(ctx, preceding, notes)

	candidates := make([]Break, 0, len(slots))
	for i, s := range slots {
		g, p := s.gap, s.placement
		prev, next := events[g.Index], events[g.Index+1]
		activity := SelectActivity(g.Index, p.DurationMinutes)
		reason := rotationReason(p.DurationMinutes, activity, prev, next, g)

		if calm[i] {
			activity = CalmingActivity(p.DurationMinutes)
			reason = calmingReason(p.DurationMinutes, activity, prev)
		}

		candidates = append(candidates, Break{
			ID:              breakID(g.ID(), p.Start),
			Time:            p.Start,
			DurationMinutes: p.DurationMinutes,
			Activity:        activity,
			Reason:          reason,
			GapID:           g.ID(),
		})
	}

	return Guard(candidates, events, now)
}

type decision struct {
	calm bool
	err  error
}

// decideCalming asks the decider about each event concurrently. All calls
// share one overrideTimeout deadline; failed or late answers count as false.
func (e *Engine) decideCalming(ctx context.Context, events []Event, notes []Note) []bool {
	calm := make([]bool, len(events))
	if e.decider == NeverOverride || len(events) == 0 {
		return calm
	}

	related := make([][]Note, len(events))
	if e.associator != nil {
		for i, ev := range events {
			related[i] = e.associator.NotesFor(ev, notes)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.overrideTimeout)
	defer cancel()

	sem := make(chan struct{}, maxConcurrentDecisions)
	var wg sync.WaitGroup
	for i := range events {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				e.log.Warn().Err(ctx.Err()).Str("event_id", events[i].ID).Msg("override decision timed out, using rotation")
				return
			}
			calm[i] = e.needsCalmingBreak(ctx, events[i], related[i])
		}(i)
	}
	wg.Wait()
	return calm
}

// needsCalmingBreak consults the decider until ctx ends. Failures count as false.
func (e *Engine) needsCalmingBreak(ctx context.Context, event Event, related []Note) bool {
	done := make(chan decision, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- decision{err: fmt.Errorf("decider panic: %v", r)}
			}
		}()
		calm, err := e.decider.Decide(ctx, event, related)
		done <- decision{calm: calm, err: err}
	}()

	select {
	case d := <-done:
		if d.err != nil {
			e.log.Warn().Err(d.err).Str("event_id", event.ID).Msg("override decision failed, using rotation")
			return false
		}
		return d.calm
	case <-ctx.Done():
		e.log.Warn().Err(ctx.Err()).Str("event_id", event.ID).Msg("override decision timed out, using rotation")
		return false
	}
}

func rotationReason(duration int, activity Activity, prev, next Event, g Gap) string {
	return fmt.Sprintf("%d-minute %s between %s and %s (%d-minute gap)",
		duration,
		LookupBreakType(activity).Name,
		titleOr(prev.Title, "your meeting"),
		titleOr(next.Title, "your next meeting"),
		int(g.DurationMinutes),
	)
}

func calmingReason(duration int, activity Activity, prev Event) string {
	return fmt.Sprintf("%d-minute %s to decompress after %s",
		duration,
		LookupBreakType(activity).Name,
		titleOr(prev.Title, "a demanding meeting"),
	)
}

func titleOr(title, fallback string) string {
	if title == "" {
		return fallback
	}
	return fmt.Sprintf("%q", title)
}
