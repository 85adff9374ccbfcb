package main

import (
	"context"
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
	"github.com/omriShneor/serenity/internal/gcal"
	"github.com/omriShneor/serenity/internal/ics"
	"github.com/omriShneor/serenity/internal/llm"
	"github.com/omriShneor/serenity/internal/logging"
	"github.com/omriShneor/serenity/internal/notes"
	"github.com/omriShneor/serenity/internal/notify"
	"github.com/omriShneor/serenity/internal/schedule"
	"github.com/omriShneor/serenity/internal/scheduler"
	"github.com/omriShneor/serenity/internal/server"
)

const googleAccount = "default"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	db, err := database.New(cfg.DBPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("creating database")
	}
	defer db.Close()

	ctx := context.Background()

	decider, llmReady := initDecider(cfg, log)
	cache := breaks.NewMemoryCache(cfg.BreakCacheTTL)
	engine := breaks.New(breaks.Options{
		Store:           cache,
		Decider:         decider,
		Associator:      notes.NewAssociator(),
		Logger:          log,
		OverrideTimeout: cfg.OverrideTimeout,
	})

	gcalClient := initGCal(ctx, cfg, db, log)
	sources := initSources(cfg, gcalClient, log)

	scheduleService := schedule.NewService(schedule.Options{
		Sources: sources,
		Notes:   db,
		Engine:  engine,
		Cache:   cache,
		Horizon: cfg.Horizon(),
		Logger:  log,
	})

	notifyService := initNotifyService(cfg, log)
	sched, err := scheduler.New(scheduler.Options{
		Cache:        cache,
		Schedule:     scheduleService,
		Reminders:    notifyService,
		PurgeSpec:    cfg.PurgeCron,
		ReminderSpec: cfg.ReminderCron,
		Logger:       log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("creating scheduler")
	}
	sched.Start()

	srvCfg := server.ServerConfig{
		DB:            db,
		Schedule:      scheduleService,
		LLMConfigured: llmReady,
		Port:          cfg.HTTPPort,
		Logger:        log,
	}
	if gcalClient != nil {
		srvCfg.Calendars = gcalClient
	}
	srv := server.New(srvCfg)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	waitForShutdown(srv, sched, log)
}

func initDecider(cfg *config.Config, log zerolog.Logger) (breaks.OverrideDecider, bool) {
	client, err := llm.NewClient(llm.ProviderConfig{
		Provider:    cfg.LLMProvider,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		BaseURL:     cfg.LLMBaseURL,
		Temperature: cfg.LLMTemperature,
	})
	if errors.Is(err, llm.ErrNotConfigured) {
		log.Warn().Err(err).Msg("text model not configured, calming breaks disabled")
		return breaks.NeverOverride, false
	}
	if err != nil {
		log.Warn().Err(err).Msg("failed to create text model client, calming breaks disabled")
		return breaks.NeverOverride, false
	}
	log.Info().Str("provider", cfg.LLMProvider).Msg("calming break decider configured")
	return calming.NewDecider(client, log), true
}

func initGCal(ctx context.Context, cfg *config.Config, db *database.DB, log zerolog.Logger) *gcal.Client {
	var store gcal.TokenStore = gcal.FileTokenStore{Path: cfg.GoogleTokenFile}
	if cfg.GoogleTokenStore == "db" {
		store = db.TokenStore(googleAccount)
	}

	client, err := gcal.NewClient(ctx, cfg.GoogleCredentialsFile, store, log)
	if err != nil {
		log.Warn().Err(err).Msg("Google Calendar not connected")
		return nil
	}
	log.Info().Str("calendar", cfg.CalendarID).Msg("Google Calendar connected")
	return client
}

func initSources(cfg *config.Config, gcalClient *gcal.Client, log zerolog.Logger) []schedule.EventSource {
	var sources []schedule.EventSource
	if gcalClient != nil {
		sources = append(sources, &gcal.Source{
			Client:     gcalClient,
			CalendarID: cfg.CalendarID,
			MaxEvents:  cfg.MaxEvents,
		})
	}

	if len(cfg.ICSFeeds) > 0 {
		fetcher := ics.NewFetcher(log)
		for _, feed := range cfg.ICSFeeds {
			sources = append(sources, &ics.Source{
				Fetcher: fetcher,
				Feed:    ics.Feed{ID: feed.ID, URL: feed.URL},
			})
		}
	}

	if len(sources) == 0 {
		log.Warn().Msg("no calendar sources configured, schedules will be empty")
	}
	return sources
}

func initNotifyService(cfg *config.Config, log zerolog.Logger) *notify.Service {
	var emailNotifier notify.Notifier
	appURL := cfg.AppURL
	if appURL == "" {
		appURL = fmt.Sprintf("http://localhost:%d", cfg.HTTPPort)
	}
	if n := notify.NewResendNotifier(cfg.ResendAPIKey, cfg.EmailFrom, appURL); n != nil && n.IsConfigured() {
		emailNotifier = n
		log.Info().Msg("email reminders configured (Resend)")
	}
	return notify.NewService(emailNotifier, cfg.ReminderRecipient, cfg.ReminderLead, log)
}

func waitForShutdown(srv *server.Server, sched *scheduler.Scheduler, log zerolog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sched.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown")
	}
}
