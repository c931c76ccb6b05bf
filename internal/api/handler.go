package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/github-weekly-series/internal/aggregator"
	"github.com/kurihiro0119/github-weekly-series/internal/collector"
	"github.com/kurihiro0119/github-weekly-series/internal/domain"
	apperrors "github.com/kurihiro0119/github-weekly-series/internal/errors"
)

// statsRetryAfter is the Retry-After hint, in seconds, sent while GitHub computes statistics
const statsRetryAfter = "3"

// Handler handles API requests
type Handler struct {
	aggregator aggregator.Aggregator
	quota      collector.QuotaReporter
}

// NewHandler creates a new API handler. quota may be nil when the source does
// not track the remote quota.
func NewHandler(agg aggregator.Aggregator, quota collector.QuotaReporter) *Handler {
	return &Handler{
		aggregator: agg,
		quota:      quota,
	}
}

// GetWeeklySeries returns one weekly series for a repository
// GET /api/v1/repos/:owner/:repo/series/:kind
func (h *Handler) GetWeeklySeries(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")

	kind, ok := domain.ParseSeriesKind(c.Param("kind"))
	if !ok {
		respondError(c, apperrors.NewBadRequestError(
			"series kind must be one of: commits, contributors, starsOpened, issuesOpened, issuesClosed"))
		return
	}

	points, err := h.aggregator.GetWeeklySeries(c.Request.Context(), kind, owner, repo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": domain.WeeklySeries{
			Kind:   kind,
			Owner:  owner,
			Repo:   repo,
			Points: points,
		},
	})
}

// GetDashboard returns every series of a repository
// GET /api/v1/repos/:owner/:repo/dashboard
func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, err := h.aggregator.GetDashboard(c.Request.Context(), c.Param("owner"), c.Param("repo"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": dashboard,
	})
}

// ListQueries returns the most recent journaled queries of a repository
// GET /api/v1/repos/:owner/:repo/queries
func (h *Handler) ListQueries(c *gin.Context) {
	limit := parseIntQuery(c, "limit", aggregator.DefaultQueryLimit)

	records, err := h.aggregator.ListQueries(c.Request.Context(), c.Param("owner"), c.Param("repo"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": records,
	})
}

// GetRateLimit returns the last observed GitHub quota
// GET /api/v1/rate-limit
func (h *Handler) GetRateLimit(c *gin.Context) {
	var quota collector.Quota
	if h.quota != nil {
		quota = h.quota.Quota()
	}

	c.JSON(http.StatusOK, gin.H{
		"data": quota,
	})
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// parseIntQuery parses an integer query parameter
func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// statusOf maps an error code to its HTTP status
func statusOf(code apperrors.ErrCode) int {
	switch code {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeStatsComputing:
		return http.StatusAccepted
	case apperrors.ErrCodeFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Code == apperrors.ErrCodeStatsComputing {
			c.Header("Retry-After", statsRetryAfter)
		}
		_ = c.Error(err)
		c.JSON(statusOf(appErr.Code), gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrCodeInternal,
			"message": err.Error(),
		},
	})
}
