package aggregator

import (
	"time"

	"github.com/kurihiro0119/github-weekly-series/internal/domain"
)

// NoHorizon disables the recency cutoff
var NoHorizon = time.Time{}

// Timestamps returns the relevant timestamp of every item that is not excluded
// and whose timestamp is at or after horizon. Items without the timestamp are
// dropped.
func Timestamps[T any](items []T, horizon time.Time, relevant func(T) *time.Time, exclude func(T) bool) []time.Time {
	var out []time.Time
	for _, item := range items {
		if exclude != nil && exclude(item) {
			continue
		}
		ts := relevant(item)
		if ts == nil {
			continue
		}
		if !horizon.IsZero() && ts.Before(horizon) {
			continue
		}
		out = append(out, *ts)
	}
	return out
}

// IssueOpenedAt selects the creation time of an issue
func IssueOpenedAt(i domain.Issue) *time.Time { return i.CreatedAt }

// IssueClosedAt selects the close time of an issue
func IssueClosedAt(i domain.Issue) *time.Time { return i.ClosedAt }

// IsPullRequest excludes pull requests listed through the issues endpoint
func IsPullRequest(i domain.Issue) bool { return i.IsPullRequest }

// StarredAt selects the time a repository was starred
func StarredAt(s domain.Star) *time.Time { return s.StarredAt }

// CountByWeek buckets timestamps on the anchor grid
func CountByWeek(timestamps []time.Time, anchor domain.WeekBucket) *WeekCounts {
	counts := NewWeekCounts()
	for _, ts := range timestamps {
		counts.Add(BucketOfTime(ts, anchor), 1)
	}
	return counts
}
