package aggregator

import (
	"github.com/kurihiro0119/github-weekly-series/internal/domain"
)

// ReduceContributors counts, for every week listed by any contributor, how many
// distinct contributors committed at least once that week. Weeks listed only
// with zero commits are kept with a zero count.
func ReduceContributors(contributors []domain.ContributorActivity) domain.Series {
	active := NewWeekCounts()
	for _, c := range contributors {
		counted := make(map[domain.WeekBucket]bool, len(c.Weeks))
		for _, w := range c.Weeks {
			if w.Commits > 0 && !counted[w.Week] {
				counted[w.Week] = true
				active.Add(w.Week, 1)
				continue
			}
			active.Add(w.Week, 0)
		}
	}
	return active.Series()
}
