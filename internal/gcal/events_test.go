package gcal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func TestToRawEvent(t *testing.T) {
	tests := []struct {
		name string
		item *calendar.Event
		ok   bool
	}{
		{
			name: "timed event",
			item: &calendar.Event{
				Id: "evt-1", Summary: "Standup",
				Start: &calendar.EventDateTime{DateTime: "2026-10-14T09:00:00+02:00"},
				End:   &calendar.EventDateTime{DateTime: "2026-10-14T09:15:00+02:00"},
			},
			ok: true,
		},
		{
			name: "all-day event",
			item: &calendar.Event{
				Id:    "evt-2",
				Start: &calendar.EventDateTime{Date: "2026-10-14"},
				End:   &calendar.EventDateTime{Date: "2026-10-15"},
			},
		},
		{
			name: "cancelled",
			item: &calendar.Event{
				Id: "evt-3", Status: "cancelled",
				Start: &calendar.EventDateTime{DateTime: "2026-10-14T09:00:00Z"},
				End:   &calendar.EventDateTime{DateTime: "2026-10-14T09:15:00Z"},
			},
		},
		{name: "missing times", item: &calendar.Event{Id: "evt-4"}},
		{name: "nil", item: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := toRawEvent(tt.item)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, "evt-1", raw.ID)
				assert.Equal(t, "Standup", raw.Summary)
				assert.Equal(t, "2026-10-14T09:00:00+02:00", raw.Start)
			}
		})
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	service, err := calendar.NewService(context.Background(),
		option.WithHTTPClient(server.Client()),
		option.WithEndpoint(server.URL+"/"),
	)
	require.NoError(t, err)
	return NewClientWithService(service, zerolog.Nop())
}

func TestListUpcoming(t *testing.T) {
	now := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	var pages int

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		assert.Equal(t, "startTime", r.URL.Query().Get("orderBy"))
		assert.Equal(t, "2026-10-14T08:00:00Z", r.URL.Query().Get("timeMin"))

		w.Header().Set("Content-Type", "application/json")
		pages++
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = w.Write([]byte(`{
				"items": [
					{"id": "a", "summary": "Standup", "start": {"dateTime": "2026-10-14T09:00:00Z"}, "end": {"dateTime": "2026-10-14T09:30:00Z"}},
					{"id": "holiday", "summary": "Holiday", "start": {"date": "2026-10-14"}, "end": {"date": "2026-10-15"}}
				],
				"nextPageToken": "p2"
			}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"items": [
				{"id": "b", "summary": "Planning", "start": {"dateTime": "2026-10-14T10:00:00Z"}, "end": {"dateTime": "2026-10-14T10:30:00Z"}},
				{"id": "c", "status": "cancelled", "start": {"dateTime": "2026-10-14T11:00:00Z"}, "end": {"dateTime": "2026-10-14T11:30:00Z"}}
			]
		}`))
	})

	events, err := client.ListUpcoming(context.Background(), "", now, 24*time.Hour, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ID)
	assert.Equal(t, "b", events[1].ID)
	assert.Equal(t, 2, pages)

	pages = 0
	limited, err := client.ListUpcoming(context.Background(), "primary", now, 24*time.Hour, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
	assert.Equal(t, 1, pages)
}

func TestListUpcomingError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"code": 401, "message": "invalid credentials"}}`))
	})

	_, err := client.ListUpcoming(context.Background(), "primary", time.Now(), time.Hour, 10)
	assert.Error(t, err)

	_, err = client.ListUpcoming(context.Background(), "primary", time.Now(), 0, 10)
	assert.Error(t, err)
}

func TestFileTokenStore(t *testing.T) {
	store := FileTokenStore{Path: filepath.Join(t.TempDir(), "tokens", "token.json")}

	_, err := store.Load()
	assert.Error(t, err)

	require.NoError(t, store.Save(&oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}))
	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "a", token.AccessToken)
	assert.Equal(t, "r", token.RefreshToken)
}

type memoryStore struct {
	saved []*oauth2.Token
}

func (m *memoryStore) Load() (*oauth2.Token, error) { return nil, nil }

func (m *memoryStore) Save(token *oauth2.Token) error {
	m.saved = append(m.saved, token)
	return nil
}

type sequenceSource struct {
	tokens []string
	i      int
}

func (s *sequenceSource) Token() (*oauth2.Token, error) {
	token := &oauth2.Token{AccessToken: s.tokens[s.i]}
	if s.i < len(s.tokens)-1 {
		s.i++
	}
	return token, nil
}

func TestPersistingTokenSource(t *testing.T) {
	store := &memoryStore{}
	base := &sequenceSource{tokens: []string{"first", "first", "second"}}
	source := newPersistingTokenSource(base, store, &oauth2.Token{AccessToken: "first"}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := source.Token()
		require.NoError(t, err)
	}

	require.Len(t, store.saved, 1)
	assert.Equal(t, "second", store.saved[0].AccessToken)
}
