package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("fetching stargazers: %w", NewStatsComputingError("commit statistics"))

	assert.True(t, IsStatsComputing(err))
	assert.False(t, IsFetchFailed(err))
	assert.False(t, IsRateLimited(err))
	assert.Equal(t, ErrCodeStatsComputing, CodeOf(err))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, CodeOf(assert.AnError))
	assert.False(t, IsNotFound(assert.AnError))
}

func TestRateLimitedMessageCarriesReset(t *testing.T) {
	reset := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	err := NewRateLimitedError(reset, nil)

	assert.Contains(t, err.Error(), "2024-03-01T12:00:00Z")
	assert.True(t, IsRateLimited(err))

	assert.Equal(t, "RATE_LIMITED: API rate limit exceeded", NewRateLimitedError(time.Time{}, nil).Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewFetchFailedError("github request failed", assert.AnError)

	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "FETCH_FAILED: github request failed")
}
