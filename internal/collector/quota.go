package collector

import (
	"sync"
	"time"

	apperrors "github.com/kurihiro0119/github-weekly-series/internal/errors"
)

// Quota is the last observed state of the remote API quota
type Quota struct {
	Known     bool      `json:"known"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// QuotaTracker tracks the remote API quota from response headers. It never
// waits: an exhausted quota is reported as a rate limited error.
type QuotaTracker interface {
	Check() error
	Update(limit, remaining int, reset time.Time)
	Snapshot() Quota
}

// githubQuotaTracker implements QuotaTracker for GitHub API
type githubQuotaTracker struct {
	mu    sync.Mutex
	quota Quota
	now   func() time.Time
}

// NewQuotaTracker creates a new quota tracker
func NewQuotaTracker() QuotaTracker {
	return &githubQuotaTracker{now: time.Now}
}

// Check fails fast when the quota is known to be exhausted until a future reset
func (q *githubQuotaTracker) Check() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.quota.Known && q.quota.Remaining <= 0 && q.now().Before(q.quota.Reset) {
		return apperrors.NewRateLimitedError(q.quota.Reset, nil)
	}
	return nil
}

// Update records the quota reported by the latest response
func (q *githubQuotaTracker) Update(limit, remaining int, reset time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.quota = Quota{Known: true, Limit: limit, Remaining: remaining, Reset: reset}
}

// Snapshot returns the current quota state
func (q *githubQuotaTracker) Snapshot() Quota {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.quota
}
