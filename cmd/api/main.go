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

	"github.com/kurihiro0119/github-weekly-series/internal/aggregator"
	"github.com/kurihiro0119/github-weekly-series/internal/api"
	"github.com/kurihiro0119/github-weekly-series/internal/collector"
	"github.com/kurihiro0119/github-weekly-series/internal/config"
	"github.com/kurihiro0119/github-weekly-series/internal/logger"
	"github.com/kurihiro0119/github-weekly-series/internal/storage"
	"github.com/kurihiro0119/github-weekly-series/internal/storage/postgres"
	"github.com/kurihiro0119/github-weekly-series/internal/storage/sqlite"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "weekly-series-api"})
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.GitHubToken == "" {
		log.Warn().Msg("GITHUB_TOKEN is not set, using the unauthenticated quota")
	}

	// Initialize query journal
	journal, err := openJournal(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("journal", cfg.JournalType).Msg("failed to initialize query journal")
	}
	defer journal.Close()

	// Initialize GitHub source
	source, err := collector.NewGitHubSource(cfg.GitHubToken, collector.GitHubOptions{
		BaseURL: cfg.GitHubAPIURL,
		Timeout: cfg.HTTPTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize GitHub source")
	}

	// Initialize aggregator
	agg := aggregator.NewAggregator(source, aggregator.Options{
		Pages:        collector.PageOptions{PageLimit: cfg.PageLimit, PerPage: cfg.PerPage},
		HorizonWeeks: cfg.HorizonWeeks,
		Journal:      journal,
	})

	// Setup routes
	router := api.SetupRoutes(api.NewHandler(agg, source))

	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Str("journal", cfg.JournalType).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

// openJournal opens the query journal selected by JOURNAL_TYPE
func openJournal(cfg *config.Config) (storage.Journal, error) {
	switch cfg.JournalType {
	case "postgres":
		return postgres.NewPostgresJournal(cfg.PostgresURL)
	case "sqlite":
		return sqlite.NewSQLiteJournal(cfg.SQLitePath)
	default:
		return storage.NewNopJournal(), nil
	}
}
