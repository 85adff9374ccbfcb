package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFeed = strings.Join([]string{
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//serenity//test//EN",
	"BEGIN:VEVENT",
	"UID:standup",
	"DTSTART:20261012T090000Z",
	"DTEND:20261012T091500Z",
	"RRULE:FREQ=DAILY;COUNT=5",
	"EXDATE:20261013T090000Z",
	"SUMMARY:Standup",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:standup",
	"RECURRENCE-ID:20261015T090000Z",
	"DTSTART:20261015T100000Z",
	"DTEND:20261015T101500Z",
	"SUMMARY:Standup (moved)",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:offsite",
	"DTSTART;VALUE=DATE:20261014",
	"DTEND;VALUE=DATE:20261015",
	"SUMMARY:Offsite",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:review",
	"DTSTART:20261014T140000Z",
	"DTEND:20261014T150000Z",
	"SUMMARY:Review",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:dropped",
	"STATUS:CANCELLED",
	"DTSTART:20261014T160000Z",
	"DTEND:20261014T170000Z",
	"SUMMARY:Dropped",
	"END:VEVENT",
	"END:VCALENDAR",
	"",
}, "\r\n")

func TestParse(t *testing.T) {
	events, err := Parse([]byte(testFeed))
	require.NoError(t, err)
	require.Len(t, events, 5)

	standup := events[0]
	assert.Equal(t, "standup", standup.UID)
	assert.Equal(t, "FREQ=DAILY;COUNT=5", standup.RRule)
	require.Len(t, standup.ExDates, 1)
	assert.True(t, standup.ExDates[0].Equal(time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC)))
	assert.False(t, standup.IsOverride())

	assert.True(t, events[1].IsOverride())
	assert.True(t, events[2].AllDay)
	assert.Equal(t, "CANCELLED", events[4].Status)

	_, err = Parse(nil)
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	events, err := Parse([]byte(testFeed))
	require.NoError(t, err)

	from := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	out, err := Expand(events, from, from.Add(72*time.Hour))
	require.NoError(t, err)

	ids := make([]string, 0, len(out))
	for _, ev := range out {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{
		"standup@2026-10-14T09:00:00Z",
		"review@2026-10-14T14:00:00Z",
		"standup@2026-10-15T09:00:00Z",
		"standup@2026-10-16T09:00:00Z",
	}, ids)

	moved := out[2]
	assert.Equal(t, "Standup (moved)", moved.Summary)
	assert.Equal(t, "2026-10-15T10:00:00Z", moved.Start)
	assert.Equal(t, "2026-10-15T10:15:00Z", moved.End)

	_, err = Expand(events, from, from.Add(-time.Hour))
	assert.Error(t, err)
}

func TestExpandKeepsRunningOccurrence(t *testing.T) {
	events, err := Parse([]byte(testFeed))
	require.NoError(t, err)

	from := time.Date(2026, 10, 14, 9, 5, 0, 0, time.UTC)
	out, err := Expand(events, from, from.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "standup@2026-10-14T09:00:00Z", out[0].ID)
}

func TestFetcher(t *testing.T) {
	var requests atomic.Int32
	var failing atomic.Bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(testFeed))
	}))
	defer server.Close()

	f := NewFetcher(zerolog.Nop())
	feed := Feed{ID: "work", URL: server.URL + "/private/token.ics"}

	body, err := f.Fetch(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, testFeed, string(body))

	body, err = f.Fetch(context.Background(), feed)
	require.NoError(t, err, "304 served from memory")
	assert.Equal(t, testFeed, string(body))

	failing.Store(true)
	body, err = f.Fetch(context.Background(), feed)
	require.NoError(t, err, "origin failure served from memory")
	assert.Equal(t, testFeed, string(body))
	assert.Equal(t, int32(3), requests.Load())

	_, err = NewFetcher(zerolog.Nop()).Fetch(context.Background(), feed)
	assert.Error(t, err, "no cached copy to fall back to")

	_, err = f.Fetch(context.Background(), Feed{ID: "empty"})
	assert.Error(t, err)
}

func TestSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testFeed))
	}))
	defer server.Close()

	src := &Source{Fetcher: NewFetcher(zerolog.Nop()), Feed: Feed{ID: "work", URL: server.URL}}
	assert.Equal(t, "ics:work", src.Name())

	out, err := src.Upcoming(context.Background(), time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC), 6*time.Hour)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Review", out[0].Summary)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://cal.example.com/...(redacted)", redactURL("https://cal.example.com/u/secret.ics?token=abc"))
	assert.Equal(t, "ics://...(redacted)", redactURL("not a url"))
}
