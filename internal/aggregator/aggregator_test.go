package aggregator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-weekly-series/internal/collector"
	"github.com/kurihiro0119/github-weekly-series/internal/domain"
	apperrors "github.com/kurihiro0119/github-weekly-series/internal/errors"
)

// testNow is Thursday of week 1000 counted from the epoch
var testNow = time.Unix(1000*week+3*86400, 0).UTC()

type memoryJournal struct {
	mu      sync.Mutex
	records []*domain.QueryRecord
	saveErr error
}

func (j *memoryJournal) SaveQuery(_ context.Context, record *domain.QueryRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.saveErr != nil {
		return j.saveErr
	}
	j.records = append(j.records, record)
	return nil
}

func (j *memoryJournal) ListQueries(_ context.Context, owner, repo string, limit int) ([]*domain.QueryRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []*domain.QueryRecord
	for i := len(j.records) - 1; i >= 0 && len(out) < limit; i-- {
		if j.records[i].Owner == owner && j.records[i].Repo == repo {
			out = append(out, j.records[i])
		}
	}
	return out, nil
}

func (j *memoryJournal) Migrate(context.Context) error { return nil }

func (j *memoryJournal) Close() error { return nil }

func newTestAggregator(source collector.Source, journal *memoryJournal) Aggregator {
	return NewAggregator(source, Options{
		Journal: journal,
		Now:     func() time.Time { return testNow },
	})
}

func page(n int) interface{} {
	return mock.MatchedBy(func(req collector.PageRequest) bool { return req.Page == n })
}

func TestCommitSeriesFollowsSourceGrid(t *testing.T) {
	// Sunday-based weeks, three days off the epoch grid
	anchor := domain.WeekBucket(998*week - 3*86400)
	source := &collector.MockSource{}
	source.On("CommitActivity", mock.Anything, "octo", "hello").Return([]domain.CommitActivityWeek{
		{Week: anchor, Total: 4},
		{Week: anchor.Next(), Total: 0},
		{Week: anchor.Next().Next(), Total: 7},
	}, nil)
	journal := &memoryJournal{}

	series, err := newTestAggregator(source, journal).GetWeeklySeries(context.Background(), domain.SeriesKindCommits, "octo", "hello")

	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, anchor, series[0].Week)
	assert.Equal(t, []int64{4, 0, 7}, values(series))
	for _, p := range series {
		assert.True(t, Aligned(p.Week, anchor))
	}
	require.Len(t, journal.records, 1)
	assert.Equal(t, domain.QueryOutcomeOK, journal.records[0].Outcome)
	assert.Equal(t, 3, journal.records[0].PointCount)
	source.AssertExpectations(t)
}

func TestCommitSeriesStatsComputing(t *testing.T) {
	source := &collector.MockSource{}
	source.On("CommitActivity", mock.Anything, "octo", "hello").
		Return(nil, apperrors.NewStatsComputingError("commit activity for octo/hello"))
	journal := &memoryJournal{}

	series, err := newTestAggregator(source, journal).GetWeeklySeries(context.Background(), domain.SeriesKindCommits, "octo", "hello")

	assert.Nil(t, series)
	assert.True(t, apperrors.IsStatsComputing(err))
	require.Len(t, journal.records, 1)
	assert.Equal(t, domain.QueryOutcome(apperrors.ErrCodeStatsComputing), journal.records[0].Outcome)
	assert.NotEmpty(t, journal.records[0].Message)
}

func TestCommitSeriesEmpty(t *testing.T) {
	source := &collector.MockSource{}
	source.On("CommitActivity", mock.Anything, "octo", "hello").Return([]domain.CommitActivityWeek{}, nil)

	series, err := newTestAggregator(source, &memoryJournal{}).GetWeeklySeries(context.Background(), domain.SeriesKindCommits, "octo", "hello")

	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestContributorSeries(t *testing.T) {
	source := &collector.MockSource{}
	source.On("ContributorStats", mock.Anything, "octo", "hello").Return([]domain.ContributorActivity{
		{ContributorID: "a", Weeks: []domain.ContributorWeek{{Week: wb(1000), Commits: 3}}},
		{ContributorID: "b", Weeks: []domain.ContributorWeek{{Week: wb(1000), Commits: 0}}},
	}, nil)

	series, err := newTestAggregator(source, &memoryJournal{}).GetWeeklySeries(context.Background(), domain.SeriesKindContributors, "octo", "hello")

	require.NoError(t, err)
	assert.Equal(t, domain.Series{{Week: wb(1000), Value: 1}}, series)
}

func TestStarSeriesZeroFillsGaps(t *testing.T) {
	source := &collector.MockSource{}
	source.On("Stargazers", mock.Anything, "octo", "hello", page(1)).Return([]domain.Star{
		{User: "a", StarredAt: at(time.Unix(998*week+60, 0))},
		{User: "b", StarredAt: at(time.Unix(1000*week+60, 0))},
		{User: "c"},
	}, nil).Once()

	series, err := newTestAggregator(source, &memoryJournal{}).GetWeeklySeries(context.Background(), domain.SeriesKindStarsOpened, "octo", "hello")

	require.NoError(t, err)
	assert.Equal(t, domain.Series{
		{Week: wb(998), Value: 1},
		{Week: wb(999), Value: 0},
		{Week: wb(1000), Value: 1},
	}, series)
	source.AssertExpectations(t)
}

func TestStarSeriesPagingErrorDiscardsPages(t *testing.T) {
	full := make([]domain.Star, collector.DefaultPerPage)
	for i := range full {
		full[i] = domain.Star{User: "u", StarredAt: at(time.Unix(999*week, 0))}
	}
	source := &collector.MockSource{}
	source.On("Stargazers", mock.Anything, "octo", "hello", page(1)).Return(full, nil)
	source.On("Stargazers", mock.Anything, "octo", "hello", page(2)).
		Return(nil, apperrors.NewRateLimitedError(time.Time{}, nil))
	journal := &memoryJournal{}

	series, err := newTestAggregator(source, journal).GetWeeklySeries(context.Background(), domain.SeriesKindStarsOpened, "octo", "hello")

	assert.Nil(t, series)
	assert.True(t, apperrors.IsRateLimited(err))
	assert.Contains(t, err.Error(), "page 2")
	require.Len(t, journal.records, 1)
	assert.Equal(t, domain.QueryOutcome(apperrors.ErrCodeRateLimited), journal.records[0].Outcome)
}

func TestIssueSeriesExcludePullRequests(t *testing.T) {
	created := testNow.Add(-8 * 24 * time.Hour)
	closed := testNow.Add(-time.Hour)
	source := &collector.MockSource{}
	source.On("Issues", mock.Anything, "octo", "hello", page(1)).Return([]domain.Issue{
		{Number: 1, CreatedAt: at(created), ClosedAt: at(closed)},
		{Number: 2, CreatedAt: at(created), ClosedAt: at(closed), IsPullRequest: true},
		{Number: 3, CreatedAt: at(testNow.Add(-400 * 24 * time.Hour)), ClosedAt: at(closed)},
	}, nil)
	agg := newTestAggregator(source, &memoryJournal{})

	opened, err := agg.GetWeeklySeries(context.Background(), domain.SeriesKindIssuesOpened, "octo", "hello")
	require.NoError(t, err)
	closedSeries, err := agg.GetWeeklySeries(context.Background(), domain.SeriesKindIssuesClosed, "octo", "hello")
	require.NoError(t, err)

	require.Len(t, opened, 53)
	require.Len(t, closedSeries, 53)
	assert.Equal(t, int64(1), opened.Total())
	assert.Equal(t, int64(1), opened[51].Value)
	// issue 3 was opened before the horizon but closed inside it
	assert.Equal(t, int64(2), closedSeries.Total())
	assert.Equal(t, int64(2), closedSeries[52].Value)
	assert.Equal(t, wb(1000), opened[52].Week)
	assertDense(t, opened)
}

func TestIssueSeriesRequestsNewestFirstSinceHorizon(t *testing.T) {
	horizon := testNow.Add(-52 * 7 * 24 * time.Hour)
	source := &collector.MockSource{}
	source.On("Issues", mock.Anything, "octo", "hello", mock.MatchedBy(func(req collector.PageRequest) bool {
		return req.Page == 1 &&
			req.PerPage == collector.DefaultPerPage &&
			req.Params[collector.ParamDirection] == "desc" &&
			req.Params[collector.ParamSince] == horizon.Format(time.RFC3339)
	})).Return([]domain.Issue{}, nil).Once()

	series, err := newTestAggregator(source, &memoryJournal{}).GetWeeklySeries(context.Background(), domain.SeriesKindIssuesOpened, "octo", "hello")

	require.NoError(t, err)
	require.Len(t, series, 53)
	assert.Equal(t, int64(0), series.Total())
	source.AssertExpectations(t)
}

func TestHorizonWeeksOption(t *testing.T) {
	source := &collector.MockSource{}
	source.On("Issues", mock.Anything, "octo", "hello", page(1)).Return([]domain.Issue{}, nil)
	agg := NewAggregator(source, Options{HorizonWeeks: 4, Now: func() time.Time { return testNow }})

	series, err := agg.GetWeeklySeries(context.Background(), domain.SeriesKindIssuesClosed, "octo", "hello")

	require.NoError(t, err)
	assert.Len(t, series, 5)
}

func TestGetWeeklySeriesValidation(t *testing.T) {
	agg := newTestAggregator(&collector.MockSource{}, &memoryJournal{})

	_, err := agg.GetWeeklySeries(context.Background(), domain.SeriesKindCommits, "", "hello")
	assert.Equal(t, apperrors.ErrCodeBadRequest, apperrors.CodeOf(err))

	_, err = agg.GetWeeklySeries(context.Background(), domain.SeriesKind("forks"), "octo", "hello")
	assert.Equal(t, apperrors.ErrCodeBadRequest, apperrors.CodeOf(err))
}

func TestJournalFailureDoesNotFailQuery(t *testing.T) {
	source := &collector.MockSource{}
	source.On("ContributorStats", mock.Anything, "octo", "hello").Return([]domain.ContributorActivity{}, nil)
	journal := &memoryJournal{saveErr: errors.New("disk full")}

	series, err := newTestAggregator(source, journal).GetWeeklySeries(context.Background(), domain.SeriesKindContributors, "octo", "hello")

	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestGetDashboard(t *testing.T) {
	source := &collector.MockSource{}
	source.On("CommitActivity", mock.Anything, "octo", "hello").Return([]domain.CommitActivityWeek{{Week: wb(1000), Total: 2}}, nil)
	source.On("ContributorStats", mock.Anything, "octo", "hello").Return([]domain.ContributorActivity{}, nil)
	source.On("Stargazers", mock.Anything, "octo", "hello", page(1)).Return([]domain.Star{}, nil)
	source.On("Issues", mock.Anything, "octo", "hello", page(1)).Return([]domain.Issue{}, nil)
	journal := &memoryJournal{}

	dashboard, err := newTestAggregator(source, journal).GetDashboard(context.Background(), "octo", "hello")

	require.NoError(t, err)
	assert.Equal(t, testNow.Unix(), dashboard.GeneratedAt)
	require.Len(t, dashboard.Series, len(domain.AllSeriesKinds))
	assert.Equal(t, domain.Series{{Week: wb(1000), Value: 2}}, dashboard.Series[domain.SeriesKindCommits])
	assert.Len(t, dashboard.Series[domain.SeriesKindIssuesOpened], 53)
	assert.Len(t, dashboard.Series[domain.SeriesKindIssuesClosed], 53)
	assert.Len(t, journal.records, len(domain.AllSeriesKinds))
}

func TestGetDashboardFailsAsAWhole(t *testing.T) {
	source := &collector.MockSource{}
	source.On("CommitActivity", mock.Anything, "octo", "hello").
		Return(nil, apperrors.NewStatsComputingError("commit activity for octo/hello"))
	source.On("ContributorStats", mock.Anything, "octo", "hello").Return([]domain.ContributorActivity{}, nil).Maybe()
	source.On("Stargazers", mock.Anything, "octo", "hello", page(1)).Return([]domain.Star{}, nil).Maybe()
	source.On("Issues", mock.Anything, "octo", "hello", page(1)).Return([]domain.Issue{}, nil).Maybe()

	dashboard, err := newTestAggregator(source, &memoryJournal{}).GetDashboard(context.Background(), "octo", "hello")

	assert.Nil(t, dashboard)
	assert.True(t, apperrors.IsStatsComputing(err))
	assert.Contains(t, err.Error(), string(domain.SeriesKindCommits))
}

func TestListQueries(t *testing.T) {
	source := &collector.MockSource{}
	source.On("ContributorStats", mock.Anything, "octo", "hello").Return([]domain.ContributorActivity{}, nil)
	source.On("CommitActivity", mock.Anything, "octo", "hello").Return(nil, apperrors.NewNotFoundError("octo/hello"))
	agg := newTestAggregator(source, &memoryJournal{})

	_, _ = agg.GetWeeklySeries(context.Background(), domain.SeriesKindContributors, "octo", "hello")
	_, _ = agg.GetWeeklySeries(context.Background(), domain.SeriesKindCommits, "octo", "hello")

	records, err := agg.ListQueries(context.Background(), "octo", "hello", 10)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.SeriesKindCommits, records[0].Kind)
	assert.Equal(t, domain.QueryOutcome(apperrors.ErrCodeNotFound), records[0].Outcome)
	assert.Equal(t, domain.QueryOutcomeOK, records[1].Outcome)
}

func values(series domain.Series) []int64 {
	out := make([]int64, len(series))
	for i, p := range series {
		out[i] = p.Value
	}
	return out
}
