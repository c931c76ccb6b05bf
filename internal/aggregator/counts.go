package aggregator

import (
	"maps"
	"slices"

	"github.com/kurihiro0119/github-weekly-series/internal/domain"
)

// WeekCounts accumulates counts keyed by week bucket and only hands them out
// in ascending week order
type WeekCounts struct {
	counts map[domain.WeekBucket]int64
}

// NewWeekCounts creates an empty accumulator
func NewWeekCounts() *WeekCounts {
	return &WeekCounts{counts: make(map[domain.WeekBucket]int64)}
}

// Add adds n to week. Adding zero still registers the week.
func (c *WeekCounts) Add(week domain.WeekBucket, n int64) {
	c.counts[week] += n
}

// Get returns the count for week, zero when absent
func (c *WeekCounts) Get(week domain.WeekBucket) int64 {
	return c.counts[week]
}

// Len returns the number of distinct weeks
func (c *WeekCounts) Len() int {
	return len(c.counts)
}

// Weeks returns the registered weeks in ascending order
func (c *WeekCounts) Weeks() []domain.WeekBucket {
	return slices.Sorted(maps.Keys(c.counts))
}

// First returns the earliest registered week
func (c *WeekCounts) First() (domain.WeekBucket, bool) {
	if len(c.counts) == 0 {
		return 0, false
	}
	return slices.Min(slices.Collect(maps.Keys(c.counts))), true
}

// Series returns one point per registered week, in order
func (c *WeekCounts) Series() domain.Series {
	weeks := c.Weeks()
	series := make(domain.Series, 0, len(weeks))
	for _, w := range weeks {
		series = append(series, domain.TimeSeriesPoint{Week: w, Value: c.counts[w]})
	}
	return series
}
