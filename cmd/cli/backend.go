package main

import (
	"context"

	"github.com/kurihiro0119/github-weekly-series/internal/aggregator"
	"github.com/kurihiro0119/github-weekly-series/internal/collector"
	"github.com/kurihiro0119/github-weekly-series/internal/config"
	"github.com/kurihiro0119/github-weekly-series/internal/domain"
	"github.com/kurihiro0119/github-weekly-series/internal/storage"
	"github.com/kurihiro0119/github-weekly-series/internal/storage/postgres"
	"github.com/kurihiro0119/github-weekly-series/internal/storage/sqlite"
	"github.com/kurihiro0119/github-weekly-series/pkg/client"
)

// backend answers CLI commands either directly from GitHub or through a running API server
type backend interface {
	WeeklySeries(ctx context.Context, kind domain.SeriesKind, owner, repo string) (*domain.WeeklySeries, error)
	Dashboard(ctx context.Context, owner, repo string) (*domain.Dashboard, error)
	Queries(ctx context.Context, owner, repo string, limit int) ([]*domain.QueryRecord, error)
	Quota(ctx context.Context) (collector.Quota, error)
	Close() error
}

func newBackend(remote bool) (backend, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if remote {
		return &remoteBackend{client: client.NewClient(cfg.APIEndpoint)}, nil
	}
	return newLocalBackend(cfg)
}

func getJournal(cfg *config.Config) (storage.Journal, error) {
	switch cfg.JournalType {
	case "postgres":
		return postgres.NewPostgresJournal(cfg.PostgresURL)
	case "sqlite":
		return sqlite.NewSQLiteJournal(cfg.SQLitePath)
	default:
		return storage.NewNopJournal(), nil
	}
}

// localBackend computes series in process
type localBackend struct {
	source  *collector.GitHubSource
	agg     aggregator.Aggregator
	journal storage.Journal
}

func newLocalBackend(cfg *config.Config) (*localBackend, error) {
	journal, err := getJournal(cfg)
	if err != nil {
		return nil, err
	}

	source, err := collector.NewGitHubSource(cfg.GitHubToken, collector.GitHubOptions{
		BaseURL: cfg.GitHubAPIURL,
		Timeout: cfg.HTTPTimeout,
	})
	if err != nil {
		journal.Close()
		return nil, err
	}

	agg := aggregator.NewAggregator(source, aggregator.Options{
		Pages:        collector.PageOptions{PageLimit: cfg.PageLimit, PerPage: cfg.PerPage},
		HorizonWeeks: cfg.HorizonWeeks,
		Journal:      journal,
	})
	return &localBackend{source: source, agg: agg, journal: journal}, nil
}

func (b *localBackend) WeeklySeries(ctx context.Context, kind domain.SeriesKind, owner, repo string) (*domain.WeeklySeries, error) {
	points, err := b.agg.GetWeeklySeries(ctx, kind, owner, repo)
	if err != nil {
		return nil, err
	}
	return &domain.WeeklySeries{Kind: kind, Owner: owner, Repo: repo, Points: points}, nil
}

func (b *localBackend) Dashboard(ctx context.Context, owner, repo string) (*domain.Dashboard, error) {
	return b.agg.GetDashboard(ctx, owner, repo)
}

func (b *localBackend) Queries(ctx context.Context, owner, repo string, limit int) ([]*domain.QueryRecord, error) {
	return b.agg.ListQueries(ctx, owner, repo, limit)
}

func (b *localBackend) Quota(ctx context.Context) (collector.Quota, error) {
	return b.source.RefreshQuota(ctx)
}

func (b *localBackend) Close() error {
	return b.journal.Close()
}

// remoteBackend delegates to a running API server
type remoteBackend struct {
	client *client.Client
}

func (b *remoteBackend) WeeklySeries(ctx context.Context, kind domain.SeriesKind, owner, repo string) (*domain.WeeklySeries, error) {
	return b.client.GetWeeklySeries(ctx, kind, owner, repo)
}

func (b *remoteBackend) Dashboard(ctx context.Context, owner, repo string) (*domain.Dashboard, error) {
	return b.client.GetDashboard(ctx, owner, repo)
}

func (b *remoteBackend) Queries(ctx context.Context, owner, repo string, limit int) ([]*domain.QueryRecord, error) {
	return b.client.ListQueries(ctx, owner, repo, limit)
}

func (b *remoteBackend) Quota(ctx context.Context) (collector.Quota, error) {
	quota, err := b.client.GetRateLimit(ctx)
	if err != nil || quota == nil {
		return collector.Quota{}, err
	}
	return *quota, nil
}

func (b *remoteBackend) Close() error { return nil }
