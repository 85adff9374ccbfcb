package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/omriShneor/serenity/internal/database"
	"github.com/omriShneor/serenity/internal/gcal"
	"github.com/omriShneor/serenity/internal/schedule"
)

// CalendarLister lists the calendars of the connected Google account.
type CalendarLister interface {
	ListCalendars(ctx context.Context) ([]gcal.CalendarInfo, error)
}

type Server struct {
	db        *database.DB
	schedule  *schedule.Service
	calendars CalendarLister
	llmReady  bool
	httpSrv   *http.Server
	port      int
	log       zerolog.Logger
}

// ServerConfig holds everything the HTTP surface needs.
type ServerConfig struct {
	DB        *database.DB
	Schedule  *schedule.Service
	Calendars CalendarLister
	// LLMConfigured reports whether calming-break decisions are enabled.
	LLMConfigured bool
	Port          int
	Logger        zerolog.Logger
}

func New(cfg ServerConfig) *Server {
	s := &Server{
		db:        cfg.DB,
		schedule:  cfg.Schedule,
		calendars: cfg.Calendars,
		llmReady:  cfg.LLMConfigured,
		port:      cfg.Port,
		log:       cfg.Logger.With().Str("component", "server").Logger(),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.corsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", s.handleHealthCheck)

	// Schedule API
	mux.HandleFunc("GET /api/schedule", s.handleGetSchedule)
	mux.HandleFunc("GET /api/calendars", s.handleListCalendars)

	// Breaks API
	mux.HandleFunc("GET /api/breaks", s.handleListBreaks)
	mux.HandleFunc("GET /api/breaks/types", s.handleBreakTypes)
	mux.HandleFunc("GET /api/breaks/suggestions", s.handleBreakSuggestions)
	mux.HandleFunc("POST /api/breaks/customize", s.handleCustomizeBreaks)
	mux.HandleFunc("GET /api/breaks/customizations", s.handleListCustomizations)
	mux.HandleFunc("POST /api/breaks/add", s.handleAddBreak)
	mux.HandleFunc("POST /api/breaks/clear-cache", s.handleClearBreakCache)
	mux.HandleFunc("DELETE /api/breaks/{id}", s.handleDeleteBreak)

	// Notes API
	mux.HandleFunc("GET /api/notes", s.handleListNotes)
	mux.HandleFunc("POST /api/notes", s.handleCreateNote)
}

func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("starting HTTP server")
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// corsMiddleware adds CORS headers to allow mobile app requests
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
