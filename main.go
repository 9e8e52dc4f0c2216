package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kritsw/courtledger/internal/config"
	"github.com/kritsw/courtledger/internal/database"
	server "github.com/kritsw/courtledger/internal/http"
	"github.com/kritsw/courtledger/internal/ledger"
	"github.com/kritsw/courtledger/internal/metrics"
	"github.com/kritsw/courtledger/internal/notifier"
	"github.com/kritsw/courtledger/internal/notifier/slack"
	"github.com/kritsw/courtledger/internal/pubsub"
	"github.com/kritsw/courtledger/internal/sheets"
	"github.com/kritsw/courtledger/internal/syncer"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	store := ledger.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	// Integrations are optional; each one is only wired when configured.
	var notifierSvc notifier.Notifier
	if cfg.Slack.Token != "" {
		notifierSvc = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	}

	var syncSvc syncer.Syncer
	if cfg.Sheets.URL != "" {
		sheetsClient := sheets.NewClient(cfg.Sheets.URL, cfg.Sheets.Secret)
		syncSvc = syncer.New(store, sheetsClient, metricsSvc)

		// Hydrate local state from the sheet before serving traffic.
		if err := syncSvc.PullAll(); err != nil {
			log.Error("Initial sync failed, continuing with local state", "error", err)
		}
	}

	var pubsubClient pubsub.PubSubClient
	if cfg.ProjectID != "" {
		pubsubClient = pubsub.New(cfg.ProjectID)
	}

	s := server.NewServer(
		store,
		metricsSvc,
		metricsHandler,
		cfg,
		notifierSvc,
		syncSvc,
		pubsubClient,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
