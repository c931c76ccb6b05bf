package aggregator

import (
	"time"

	"github.com/kurihiro0119/github-weekly-series/internal/domain"
)

// EpochAnchor aligns buckets to the Unix epoch grid
const EpochAnchor domain.WeekBucket = 0

// BucketOf returns the start of the week bucket containing ts (Unix seconds) on
// the grid whose phase is given by anchor. The result is always congruent to
// anchor modulo a week, for timestamps before the anchor as well.
func BucketOf(ts int64, anchor domain.WeekBucket) domain.WeekBucket {
	offset := (ts - int64(anchor)) % domain.WeekSeconds
	if offset < 0 {
		offset += domain.WeekSeconds
	}
	return domain.WeekBucket(ts - offset)
}

// BucketOfTime is BucketOf for a time.Time, truncated to whole seconds
func BucketOfTime(t time.Time, anchor domain.WeekBucket) domain.WeekBucket {
	return BucketOf(t.Unix(), anchor)
}

// Aligned reports whether w lies on the grid of anchor
func Aligned(w, anchor domain.WeekBucket) bool {
	return BucketOf(int64(w), anchor) == w
}
