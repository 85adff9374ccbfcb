// Package main provides a test server for E2E testing the mobile app.
// It runs with in-memory SQLite and a fixture calendar that test code controls.
// The text model is real when SERENITY_LLM_PROVIDER is set, otherwise calming
// breaks are disabled.
//
// Usage:
//
//	SERENITY_LLM_PROVIDER=anthropic ANTHROPIC_API_KEY=sk-... go run ./cmd/testserver
//
// The server exposes additional test control endpoints:
//   - POST /api/test/reset - Clear fixture events and the break cache
//   - POST /api/test/events - Replace the fixture calendar
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/omriShneor/serenity/internal/breaks"
	"github.com/omriShneor/serenity/internal/calming"
	"github.com/omriShneor/serenity/internal/config"
	"github.com/omriShneor/serenity/internal/database"
	"github.com/omriShneor/serenity/internal/llm"
	"github.com/omriShneor/serenity/internal/logging"
	"github.com/omriShneor/serenity/internal/notes"
	"github.com/omriShneor/serenity/internal/schedule"
	"github.com/omriShneor/serenity/internal/server"
)

func main() {
	cfg := config.LoadFromEnv()
	log := logging.New(cfg.LogLevel, true)
	log.Info().Msg("starting Serenity test server (in-memory database, fixture calendar)")

	db, err := database.New(":memory:", log)
	if err != nil {
		log.Fatal().Err(err).Msg("creating database")
	}
	defer db.Close()

	decider, llmReady := testDecider(cfg, log)
	cache := breaks.NewMemoryCache(cfg.BreakCacheTTL)
	engine := breaks.New(breaks.Options{
		Store:           cache,
		Decider:         decider,
		Associator:      notes.NewAssociator(),
		Logger:          log,
		OverrideTimeout: cfg.OverrideTimeout,
	})

	fixture := schedule.NewMemorySource("fixture")
	scheduleService := schedule.NewService(schedule.Options{
		Sources: []schedule.EventSource{fixture},
		Notes:   db,
		Engine:  engine,
		Cache:   cache,
		Horizon: cfg.Horizon(),
		Logger:  log,
	})

	srv := server.New(server.ServerConfig{
		DB:            db,
		Schedule:      scheduleService,
		LLMConfigured: llmReady,
		Port:          cfg.HTTPPort,
		Logger:        log,
	})

	// Create test control mux
	testMux := http.NewServeMux()
	mainHandler := srv.Handler()

	testMux.HandleFunc("POST /api/test/reset", func(w http.ResponseWriter, r *http.Request) {
		fixture.Set(nil)
		scheduleService.ClearCache()
		log.Info().Msg("test state reset")
		respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	})

	testMux.HandleFunc("POST /api/test/events", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Events []breaks.RawEvent `json:"events"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		fixture.Set(req.Events)
		log.Info().Int("events", len(req.Events)).Msg("fixture calendar replaced")
		respondJSON(w, http.StatusOK, map[string]interface{}{"status": "stored", "events": len(req.Events)})
	})

	// Fallback to main handler
	testMux.Handle("/", mainHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      corsMiddleware(testMux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("test endpoints: POST /api/test/reset, POST /api/test/events")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down test server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

func testDecider(cfg *config.Config, log zerolog.Logger) (breaks.OverrideDecider, bool) {
	client, err := llm.NewClient(llm.ProviderConfig{
		Provider:    cfg.LLMProvider,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		BaseURL:     cfg.LLMBaseURL,
		Temperature: cfg.LLMTemperature,
	})
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			log.Warn().Err(err).Msg("text model unavailable")
		}
		return breaks.NeverOverride, false
	}
	return calming.NewDecider(client, log), true
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
