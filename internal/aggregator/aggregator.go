package aggregator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kurihiro0119/github-weekly-series/internal/collector"
	"github.com/kurihiro0119/github-weekly-series/internal/domain"
	apperrors "github.com/kurihiro0119/github-weekly-series/internal/errors"
	"github.com/kurihiro0119/github-weekly-series/internal/logger"
	"github.com/kurihiro0119/github-weekly-series/internal/storage"
)

const (
	// DefaultHorizonWeeks is how far back the issue series look
	DefaultHorizonWeeks = 52
	// DefaultQueryLimit is the journal page size when none is given
	DefaultQueryLimit = 20
)

// Aggregator defines the series query interface
type Aggregator interface {
	// GetWeeklySeries computes a series as of the current time
	GetWeeklySeries(ctx context.Context, kind domain.SeriesKind, owner, repo string) (domain.Series, error)

	// GetWeeklySeriesAt computes a series as of now
	GetWeeklySeriesAt(ctx context.Context, kind domain.SeriesKind, owner, repo string, now time.Time) (domain.Series, error)

	// GetDashboard computes every series kind for a repository from one instant
	GetDashboard(ctx context.Context, owner, repo string) (*domain.Dashboard, error)

	// ListQueries returns the journal of recent queries for a repository
	ListQueries(ctx context.Context, owner, repo string, limit int) ([]*domain.QueryRecord, error)
}

// Options configures an aggregator
type Options struct {
	Pages        collector.PageOptions
	HorizonWeeks int
	Journal      storage.Journal
	Now          func() time.Time
}

// aggregator implements the Aggregator interface
type aggregator struct {
	source       collector.Source
	journal      storage.Journal
	pages        collector.PageOptions
	horizonWeeks int
	now          func() time.Time
	log          *logger.Logger
}

// NewAggregator creates a new aggregator reading from source
func NewAggregator(source collector.Source, opts Options) Aggregator {
	a := &aggregator{
		source:       source,
		journal:      opts.Journal,
		pages:        opts.Pages,
		horizonWeeks: opts.HorizonWeeks,
		now:          opts.Now,
		log:          logger.Named("aggregator"),
	}
	if a.journal == nil {
		a.journal = storage.NewNopJournal()
	}
	if a.pages == (collector.PageOptions{}) {
		a.pages = collector.DefaultPageOptions()
	}
	if a.horizonWeeks <= 0 {
		a.horizonWeeks = DefaultHorizonWeeks
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// GetWeeklySeries computes a series as of the current time
func (a *aggregator) GetWeeklySeries(ctx context.Context, kind domain.SeriesKind, owner, repo string) (domain.Series, error) {
	return a.GetWeeklySeriesAt(ctx, kind, owner, repo, a.now())
}

// GetWeeklySeriesAt computes a series as of now and journals the outcome
func (a *aggregator) GetWeeklySeriesAt(ctx context.Context, kind domain.SeriesKind, owner, repo string, now time.Time) (domain.Series, error) {
	if err := validateRepo(owner, repo); err != nil {
		return nil, err
	}

	started := time.Now()
	series, err := a.compute(ctx, kind, owner, repo, now)
	took := time.Since(started)

	record := &domain.QueryRecord{
		ID:         uuid.New().String(),
		Kind:       kind,
		Owner:      owner,
		Repo:       repo,
		StartedAt:  started.UTC(),
		Duration:   took,
		PointCount: len(series),
		Outcome:    domain.QueryOutcomeOK,
	}
	if err != nil {
		record.Outcome = domain.QueryOutcome(apperrors.CodeOf(err))
		record.Message = err.Error()
		a.log.Warn().Err(err).
			Str("kind", string(kind)).
			Str("repo", owner+"/"+repo).
			Str("code", string(record.Outcome)).
			Msg("series query failed")
	} else {
		a.log.Info().
			Str("kind", string(kind)).
			Str("repo", owner+"/"+repo).
			Int("points", len(series)).
			Dur("took", took).
			Msg("series computed")
	}

	// The journal must not turn a computed series into a failure
	if jerr := a.journal.SaveQuery(context.WithoutCancel(ctx), record); jerr != nil {
		a.log.Error().Err(jerr).Str("query_id", record.ID).Msg("failed to journal query")
	}

	if err != nil {
		return nil, err
	}
	return series, nil
}

func (a *aggregator) compute(ctx context.Context, kind domain.SeriesKind, owner, repo string, now time.Time) (domain.Series, error) {
	switch kind {
	case domain.SeriesKindCommits:
		return a.commitSeries(ctx, owner, repo, now)
	case domain.SeriesKindContributors:
		return a.contributorSeries(ctx, owner, repo)
	case domain.SeriesKindStarsOpened:
		return a.starSeries(ctx, owner, repo, now)
	case domain.SeriesKindIssuesOpened:
		return a.issueSeries(ctx, owner, repo, now, IssueOpenedAt)
	case domain.SeriesKindIssuesClosed:
		return a.issueSeries(ctx, owner, repo, now, IssueClosedAt)
	default:
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown series kind %q", kind))
	}
}

func (a *aggregator) commitSeries(ctx context.Context, owner, repo string, now time.Time) (domain.Series, error) {
	weeks, err := a.source.CommitActivity(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	counts, anchor := commitCounts(weeks)
	return SinceFirstObservation(counts, anchor, now)
}

func (a *aggregator) contributorSeries(ctx context.Context, owner, repo string) (domain.Series, error) {
	contributors, err := a.source.ContributorStats(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	return ReduceContributors(contributors), nil
}

func (a *aggregator) starSeries(ctx context.Context, owner, repo string, now time.Time) (domain.Series, error) {
	stars, err := collector.FetchPages(ctx, a.pages, nil, func(ctx context.Context, req collector.PageRequest) ([]domain.Star, error) {
		return a.source.Stargazers(ctx, owner, repo, req)
	})
	if err != nil {
		return nil, err
	}
	counts := CountByWeek(Timestamps(stars, NoHorizon, StarredAt, nil), EpochAnchor)
	return SinceFirstObservation(counts, EpochAnchor, now)
}

func (a *aggregator) issueSeries(ctx context.Context, owner, repo string, now time.Time, relevant func(domain.Issue) *time.Time) (domain.Series, error) {
	horizon := a.horizon(now)
	params := map[string]string{
		collector.ParamDirection: "desc",
		collector.ParamSince:     horizon.UTC().Format(time.RFC3339),
	}
	issues, err := collector.FetchPages(ctx, a.pages, params, func(ctx context.Context, req collector.PageRequest) ([]domain.Issue, error) {
		return a.source.Issues(ctx, owner, repo, req)
	})
	if err != nil {
		return nil, err
	}
	counts := CountByWeek(Timestamps(issues, horizon, relevant, IsPullRequest), EpochAnchor)
	return OverHorizon(counts, EpochAnchor, horizon, now)
}

// horizon truncates to whole seconds so the since parameter and the filter agree
func (a *aggregator) horizon(now time.Time) time.Time {
	return now.Add(-time.Duration(a.horizonWeeks) * time.Duration(domain.WeekSeconds) * time.Second).Truncate(time.Second)
}

// GetDashboard computes every series concurrently from the same instant. The
// first failure cancels the remaining queries and fails the whole dashboard.
func (a *aggregator) GetDashboard(ctx context.Context, owner, repo string) (*domain.Dashboard, error) {
	if err := validateRepo(owner, repo); err != nil {
		return nil, err
	}

	now := a.now()
	dashboard := &domain.Dashboard{
		Owner:       owner,
		Repo:        repo,
		GeneratedAt: now.Unix(),
		Series:      make(map[domain.SeriesKind]domain.Series, len(domain.AllSeriesKinds)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range domain.AllSeriesKinds {
		g.Go(func() error {
			series, err := a.GetWeeklySeriesAt(gctx, kind, owner, repo, now)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			mu.Lock()
			dashboard.Series[kind] = series
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return dashboard, nil
}

// ListQueries returns the journal of recent queries for a repository
func (a *aggregator) ListQueries(ctx context.Context, owner, repo string, limit int) ([]*domain.QueryRecord, error) {
	if err := validateRepo(owner, repo); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	records, err := a.journal.ListQueries(ctx, owner, repo, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list queries", err)
	}
	return records, nil
}

func validateRepo(owner, repo string) error {
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(repo) == "" {
		return apperrors.NewBadRequestError("owner and repository are required")
	}
	return nil
}
