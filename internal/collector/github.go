package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/kurihiro0119/github-weekly-series/internal/domain"
	apperrors "github.com/kurihiro0119/github-weekly-series/internal/errors"
	"github.com/kurihiro0119/github-weekly-series/internal/logger"
)

// GitHubOptions configures a GitHubSource
type GitHubOptions struct {
	// BaseURL overrides https://api.github.com/, e.g. for GitHub Enterprise or tests
	BaseURL string
	Timeout time.Duration
}

// GitHubSource implements Source using the GitHub REST API
type GitHubSource struct {
	client *github.Client
	quota  QuotaTracker
	log    *logger.Logger
}

var _ Source = (*GitHubSource)(nil)

// NewGitHubSource creates a new GitHub source. An empty token makes
// unauthenticated requests.
func NewGitHubSource(token string, opts GitHubOptions) (*GitHubSource, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = opts.Timeout
	}

	client := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", opts.BaseURL, err)
		}
		client.BaseURL = u
	}

	return &GitHubSource{
		client: client,
		quota:  NewQuotaTracker(),
		log:    logger.Named("github"),
	}, nil
}

// Quota returns the last observed GitHub quota
func (s *GitHubSource) Quota() Quota {
	return s.quota.Snapshot()
}

// RefreshQuota asks GitHub for the current core quota. The rate limit endpoint
// is not counted against the quota.
func (s *GitHubSource) RefreshQuota(ctx context.Context) (Quota, error) {
	limits, resp, err := s.client.RateLimits(ctx)
	s.observe(resp, "rate_limit", 0, 0)
	if err != nil {
		return Quota{}, s.classify(err, "rate limit")
	}
	if core := limits.GetCore(); core != nil {
		s.quota.Update(core.Limit, core.Remaining, core.Reset.Time)
	}
	return s.quota.Snapshot(), nil
}

// CommitActivity retrieves weekly commit totals for the last year
func (s *GitHubSource) CommitActivity(ctx context.Context, owner, repo string) ([]domain.CommitActivityWeek, error) {
	if err := s.quota.Check(); err != nil {
		return nil, err
	}

	activity, resp, err := s.client.Repositories.ListCommitActivity(ctx, owner, repo)
	s.observe(resp, "commit_activity", 0, len(activity))
	if err != nil {
		return nil, s.classify(err, fmt.Sprintf("commit activity for %s/%s", owner, repo))
	}

	weeks := make([]domain.CommitActivityWeek, 0, len(activity))
	for _, a := range activity {
		if a == nil || a.Week == nil {
			continue
		}
		weeks = append(weeks, domain.CommitActivityWeek{
			Week:  domain.WeekBucket(a.Week.Unix()),
			Total: a.GetTotal(),
			Days:  a.Days,
		})
	}
	return weeks, nil
}

// ContributorStats retrieves weekly commit counts per contributor
func (s *GitHubSource) ContributorStats(ctx context.Context, owner, repo string) ([]domain.ContributorActivity, error) {
	if err := s.quota.Check(); err != nil {
		return nil, err
	}

	stats, resp, err := s.client.Repositories.ListContributorsStats(ctx, owner, repo)
	s.observe(resp, "contributor_stats", 0, len(stats))
	if err != nil {
		return nil, s.classify(err, fmt.Sprintf("contributor statistics for %s/%s", owner, repo))
	}

	contributors := make([]domain.ContributorActivity, 0, len(stats))
	for _, st := range stats {
		if st == nil {
			continue
		}
		activity := domain.ContributorActivity{
			ContributorID: contributorID(st.Author),
			Login:         st.GetAuthor().GetLogin(),
		}
		for _, w := range st.Weeks {
			if w == nil || w.Week == nil {
				continue
			}
			activity.Weeks = append(activity.Weeks, domain.ContributorWeek{
				Week:    domain.WeekBucket(w.Week.Unix()),
				Commits: w.GetCommits(),
			})
		}
		contributors = append(contributors, activity)
	}
	return contributors, nil
}

// Stargazers retrieves one page of stargazers
func (s *GitHubSource) Stargazers(ctx context.Context, owner, repo string, req PageRequest) ([]domain.Star, error) {
	if err := s.quota.Check(); err != nil {
		return nil, err
	}

	opts := &github.ListOptions{Page: req.Page, PerPage: req.PerPage}
	stargazers, resp, err := s.client.Activity.ListStargazers(ctx, owner, repo, opts)
	s.observe(resp, "stargazers", req.Page, len(stargazers))
	if err != nil {
		return nil, s.classify(err, fmt.Sprintf("stargazers for %s/%s", owner, repo))
	}

	stars := make([]domain.Star, 0, len(stargazers))
	for _, sg := range stargazers {
		if sg == nil {
			continue
		}
		star := domain.Star{User: sg.GetUser().GetLogin()}
		if sg.StarredAt != nil {
			t := sg.StarredAt.Time
			star.StarredAt = &t
		}
		stars = append(stars, star)
	}
	return stars, nil
}

// Issues retrieves one page of issues in every state, sorted by creation time
func (s *GitHubSource) Issues(ctx context.Context, owner, repo string, req PageRequest) ([]domain.Issue, error) {
	if err := s.quota.Check(); err != nil {
		return nil, err
	}

	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{Page: req.Page, PerPage: req.PerPage},
	}
	if dir := req.Params[ParamDirection]; dir == "asc" || dir == "desc" {
		opts.Direction = dir
	}
	if since := req.Params[ParamSince]; since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("invalid since parameter %q", since))
		}
		opts.Since = t
	}

	ghIssues, resp, err := s.client.Issues.ListByRepo(ctx, owner, repo, opts)
	s.observe(resp, "issues", req.Page, len(ghIssues))
	if err != nil {
		return nil, s.classify(err, fmt.Sprintf("issues for %s/%s", owner, repo))
	}

	issues := make([]domain.Issue, 0, len(ghIssues))
	for _, gi := range ghIssues {
		if gi == nil {
			continue
		}
		issue := domain.Issue{
			Number:        gi.GetNumber(),
			IsPullRequest: gi.IsPullRequest(),
		}
		if gi.CreatedAt != nil {
			t := gi.CreatedAt.Time
			issue.CreatedAt = &t
		}
		if gi.ClosedAt != nil {
			t := gi.ClosedAt.Time
			issue.ClosedAt = &t
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// observe records the quota from resp and logs the page
func (s *GitHubSource) observe(resp *github.Response, resource string, page, items int) {
	if resp == nil {
		return
	}
	if resp.Rate.Limit > 0 {
		s.quota.Update(resp.Rate.Limit, resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
	s.log.Debug().
		Str("resource", resource).
		Int("page", page).
		Int("items", items).
		Int("status", resp.StatusCode).
		Int("rate_remaining", resp.Rate.Remaining).
		Msg("github response")
}

// classify maps go-github errors onto the fetch error taxonomy
func (s *GitHubSource) classify(err error, resource string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var acceptedErr *github.AcceptedError
	if errors.As(err, &acceptedErr) {
		return apperrors.NewStatsComputingError(resource)
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		s.quota.Update(rateErr.Rate.Limit, 0, rateErr.Rate.Reset.Time)
		return apperrors.NewRateLimitedError(rateErr.Rate.Reset.Time, err)
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		var reset time.Time
		if abuseErr.RetryAfter != nil {
			reset = time.Now().Add(*abuseErr.RetryAfter)
		}
		return apperrors.NewRateLimitedError(reset, err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return apperrors.NewNotFoundError(resource)
		case http.StatusTooManyRequests:
			return apperrors.NewRateLimitedError(resetFromHeader(respErr.Response.Header), err)
		}
		return apperrors.NewFetchFailedError(
			fmt.Sprintf("failed to fetch %s: status %d", resource, respErr.Response.StatusCode), err)
	}

	return apperrors.NewFetchFailedError(fmt.Sprintf("failed to fetch %s", resource), err)
}

func contributorID(c *github.Contributor) string {
	if c == nil {
		return ""
	}
	if id := c.GetID(); id != 0 {
		return strconv.FormatInt(id, 10)
	}
	return c.GetLogin()
}

func resetFromHeader(h http.Header) time.Time {
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(secs, 0)
		}
	}
	return time.Time{}
}
