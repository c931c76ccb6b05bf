package aggregator

import (
	"github.com/kurihiro0119/github-weekly-series/internal/domain"
)

// commitCounts sums commit activity totals on the grid of the first reported week
func commitCounts(weeks []domain.CommitActivityWeek) (*WeekCounts, domain.WeekBucket) {
	counts := NewWeekCounts()
	if len(weeks) == 0 {
		return counts, EpochAnchor
	}
	anchor := weeks[0].Week
	for _, w := range weeks[1:] {
		if w.Week < anchor {
			anchor = w.Week
		}
	}
	for _, w := range weeks {
		counts.Add(BucketOf(int64(w.Week), anchor), int64(w.Total))
	}
	return counts, anchor
}
