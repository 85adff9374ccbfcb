package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/omriShneor/serenity/internal/breaks"
	"github.com/omriShneor/serenity/internal/calming"
	"github.com/omriShneor/serenity/internal/database"
	"github.com/omriShneor/serenity/internal/llm"
	"github.com/omriShneor/serenity/internal/notes"
	"github.com/omriShneor/serenity/internal/schedule"
	"github.com/omriShneor/serenity/internal/server"
)

// DefaultNow is the fixed planning instant of test servers.
var DefaultNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

// TestServer wraps a server for E2E testing
type TestServer struct {
	Server     *server.Server
	DB         *database.DB
	HTTPServer *httptest.Server
	Schedule   *schedule.Service
	Cache      *breaks.MemoryCache
	// Calendar is the fixture event source every test server reads from.
	Calendar *schedule.MemorySource
	Now      time.Time
	t        *testing.T

	sources []schedule.EventSource
	llm     llm.Client
}

// TestServerOption configures a test server
type TestServerOption func(*TestServer)

// NewTestServer creates a fully configured test server for E2E testing
func NewTestServer(t *testing.T, opts ...TestServerOption) *TestServer {
	t.Helper()

	ts := &TestServer{
		DB:       database.NewTestDB(t),
		Calendar: schedule.NewMemorySource("fixture"),
		Now:      DefaultNow,
		t:        t,
	}

	// Apply options before creating server
	for _, opt := range opts {
		opt(ts)
	}

	clock := func() time.Time { return ts.Now }
	ts.Cache = breaks.NewMemoryCache(breaks.DefaultCacheTTL).WithClock(clock)

	var decider breaks.OverrideDecider = breaks.NeverOverride
	if ts.llm != nil {
		decider = calming.NewDecider(ts.llm, zerolog.Nop())
	}
	engine := breaks.New(breaks.Options{
		Store:      ts.Cache,
		Decider:    decider,
		Associator: notes.NewAssociator(),
		Clock:      clock,
		Logger:     zerolog.Nop(),
	})

	ts.Schedule = schedule.NewService(schedule.Options{
		Sources: append([]schedule.EventSource{ts.Calendar}, ts.sources...),
		Notes:   ts.DB,
		Engine:  engine,
		Cache:   ts.Cache,
		Clock:   clock,
		Logger:  zerolog.Nop(),
	})

	ts.Server = server.New(server.ServerConfig{
		DB:            ts.DB,
		Schedule:      ts.Schedule,
		LLMConfigured: ts.llm != nil,
		Port:          0, // Will use httptest server
		Logger:        zerolog.Nop(),
	})
	ts.HTTPServer = httptest.NewServer(ts.Server.Handler())

	t.Cleanup(func() {
		ts.HTTPServer.Close()
	})

	return ts
}

// BaseURL returns the test server base URL
func (ts *TestServer) BaseURL() string {
	return ts.HTTPServer.URL
}

// Client returns an HTTP client configured for the test server
func (ts *TestServer) Client() *http.Client {
	return ts.HTTPServer.Client()
}

// SetEvents replaces the fixture calendar.
func (ts *TestServer) SetEvents(events ...breaks.RawEvent) {
	ts.Calendar.Set(events)
}

// WithLLM enables calming-break decisions backed by client.
func WithLLM(client llm.Client) TestServerOption {
	return func(ts *TestServer) {
		ts.llm = client
	}
}

// WithSource adds a calendar source next to the fixture calendar.
func WithSource(src schedule.EventSource) TestServerOption {
	return func(ts *TestServer) {
		ts.sources = append(ts.sources, src)
	}
}

// WithNow sets the planning instant.
func WithNow(now time.Time) TestServerOption {
	return func(ts *TestServer) {
		ts.Now = now
	}
}
