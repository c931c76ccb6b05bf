package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-weekly-series/internal/domain"
	apperrors "github.com/kurihiro0119/github-weekly-series/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

func TestGetWeeklySeries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/repos/octo/hello/series/starsOpened", r.URL.Path)
		fmt.Fprint(w, `{"data":{"kind":"starsOpened","owner":"octo","repo":"hello","points":[{"week":604800,"value":3}]}}`)
	})

	series, err := c.GetWeeklySeries(context.Background(), domain.SeriesKindStarsOpened, "octo", "hello")

	require.NoError(t, err)
	assert.Equal(t, domain.SeriesKindStarsOpened, series.Kind)
	assert.Equal(t, domain.Series{{Week: 604800, Value: 3}}, series.Points)
}

func TestGetDashboard(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/repos/octo/hello/dashboard", r.URL.Path)
		fmt.Fprint(w, `{"data":{"owner":"octo","repo":"hello","generated_at":42,"series":{"commits":[{"week":0,"value":1}]}}}`)
	})

	dashboard, err := c.GetDashboard(context.Background(), "octo", "hello")

	require.NoError(t, err)
	assert.Equal(t, int64(42), dashboard.GeneratedAt)
	assert.Equal(t, domain.Series{{Week: 0, Value: 1}}, dashboard.Series[domain.SeriesKindCommits])
}

func TestListQueriesSendsLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"data":[{"id":"q1","kind":"commits","owner":"octo","repo":"hello","outcome":"RATE_LIMITED"}]}`)
	})

	records, err := c.ListQueries(context.Background(), "octo", "hello", 7)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.QueryOutcome("RATE_LIMITED"), records[0].Outcome)
}

func TestErrorBodyDecodesToAppError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprint(w, `{"error":{"code":"STATS_COMPUTING","message":"statistics are being computed"}}`)
	})

	_, err := c.GetWeeklySeries(context.Background(), domain.SeriesKindCommits, "octo", "hello")

	assert.True(t, apperrors.IsStatsComputing(err), "got %v", err)
}

func TestNonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream down")
	})

	_, err := c.GetDashboard(context.Background(), "octo", "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.CodeOf(err))
}

func TestGetRateLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":{"known":true,"limit":60,"remaining":0,"reset":"2024-05-01T12:00:00Z"}}`)
	})

	quota, err := c.GetRateLimit(context.Background())

	require.NoError(t, err)
	assert.True(t, quota.Known)
	assert.Equal(t, 0, quota.Remaining)
}

func TestHealthCheck(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status":"degraded"}`)
	})

	assert.EqualError(t, c.HealthCheck(context.Background()), "unhealthy status: degraded")
}
