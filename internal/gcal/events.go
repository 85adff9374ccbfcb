package gcal

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/omriShneor/serenity/internal/breaks"
)

const (
	DefaultCalendarID = "primary"
	pageSize          = 250
)

func parseGoogleEventTimes(item *calendar.Event, loc *time.Location) (time.Time, time.Time, bool, error) {
	if item == nil || item.Start == nil || item.End == nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event is missing start or end")
	}

	// All-day events use Date instead of DateTime.
	if item.Start.Date != "" {
		startDate, err := time.ParseInLocation("2006-01-02", item.Start.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse all-day start date: %w", err)
		}
		endDate, err := time.ParseInLocation("2006-01-02", item.End.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse all-day end date: %w", err)
		}
		return startDate, endDate, true, nil
	}

	if item.Start.DateTime == "" || item.End.DateTime == "" {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event datetime is missing")
	}

	startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse start datetime: %w", err)
	}
	endTime, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse end datetime: %w", err)
	}

	return startTime, endTime, false, nil
}

// toRawEvent converts a timed event. Cancelled, all-day and malformed events are skipped.
func toRawEvent(item *calendar.Event) (breaks.RawEvent, bool) {
	if item == nil || item.Status == "cancelled" {
		return breaks.RawEvent{}, false
	}
	start, end, allDay, err := parseGoogleEventTimes(item, time.UTC)
	if err != nil || allDay {
		return breaks.RawEvent{}, false
	}
	return breaks.RawEvent{
		ID:      item.Id,
		Summary: item.Summary,
		Start:   start.Format(time.RFC3339),
		End:     end.Format(time.RFC3339),
	}, true
}

// ListUpcoming returns up to maxEvents timed events between now and now+horizon, ordered by start.
func (c *Client) ListUpcoming(ctx context.Context, calendarID string, now time.Time, horizon time.Duration, maxEvents int) ([]breaks.RawEvent, error) {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("invalid horizon: %s", horizon)
	}

	var result []breaks.RawEvent
	pageToken := ""
	skipped := 0

	for {
		call := c.service.Events.List(calendarID).
			Context(ctx).
			TimeMin(now.Format(time.RFC3339)).
			TimeMax(now.Add(horizon).Format(time.RFC3339)).
			SingleEvents(true).
			ShowDeleted(false).
			OrderBy("startTime").
			MaxResults(pageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list upcoming events: %w", err)
		}

		for _, item := range events.Items {
			raw, ok := toRawEvent(item)
			if !ok {
				skipped++
				continue
			}
			result = append(result, raw)
			if maxEvents > 0 && len(result) >= maxEvents {
				return result, nil
			}
		}

		if events.NextPageToken == "" {
			break
		}
		pageToken = events.NextPageToken
	}

	if skipped > 0 {
		c.log.Debug().Str("calendar_id", calendarID).Int("skipped", skipped).Msg("skipped cancelled or all-day events")
	}
	return result, nil
}

// Source adapts one calendar to the schedule's event source contract.
type Source struct {
	Client     *Client
	CalendarID string
	MaxEvents  int
}

func (s *Source) Name() string {
	return "gcal:" + s.CalendarID
}

func (s *Source) Upcoming(ctx context.Context, now time.Time, horizon time.Duration) ([]breaks.RawEvent, error) {
	return s.Client.ListUpcoming(ctx, s.CalendarID, now, horizon, s.MaxEvents)
}
