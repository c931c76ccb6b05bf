package collector

import (
	"context"

	"github.com/kurihiro0119/github-weekly-series/internal/domain"
)

// Source defines the paginated resource fetcher the aggregator reads from.
// Implementations narrow the remote payloads into domain records and report
// failures as *errors.AppError values carrying one of the fetch error codes.
type Source interface {
	// CommitActivity retrieves the last year of weekly commit totals
	CommitActivity(ctx context.Context, owner, repo string) ([]domain.CommitActivityWeek, error)

	// ContributorStats retrieves weekly commit counts per contributor
	ContributorStats(ctx context.Context, owner, repo string) ([]domain.ContributorActivity, error)

	// Stargazers retrieves one page of stargazers with their starred_at timestamps
	Stargazers(ctx context.Context, owner, repo string, req PageRequest) ([]domain.Star, error)

	// Issues retrieves one page of issues, pull requests included
	Issues(ctx context.Context, owner, repo string, req PageRequest) ([]domain.Issue, error)
}

// QuotaReporter is implemented by sources that track the remote API quota
type QuotaReporter interface {
	Quota() Quota
}

// Extra parameters understood by Source.Issues
const (
	ParamDirection = "direction" // "asc" or "desc"
	ParamSince     = "since"     // RFC 3339, only items updated at or after it
)
