package aggregator

import (
	"fmt"
	"time"

	"github.com/kurihiro0119/github-weekly-series/internal/domain"
	apperrors "github.com/kurihiro0119/github-weekly-series/internal/errors"
)

// Assemble emits one point per week in [first, last], filling weeks absent from
// counts with zero. Both bounds must lie on the same week grid. An inverted range
// yields an empty series.
func Assemble(counts *WeekCounts, first, last domain.WeekBucket) (domain.Series, error) {
	if first > last {
		return domain.Series{}, nil
	}
	if (int64(last)-int64(first))%domain.WeekSeconds != 0 {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("week range [%d, %d] is not on a single week grid", first, last))
	}

	series := make(domain.Series, 0, (int64(last)-int64(first))/domain.WeekSeconds+1)
	for w := first; w <= last; w = w.Next() {
		series = append(series, domain.TimeSeriesPoint{Week: w, Value: counts.Get(w)})
	}
	return series, nil
}

// SinceFirstObservation assembles from the earliest observed week up to the week
// containing now. Without observations there is nothing to anchor on and the
// series is empty.
func SinceFirstObservation(counts *WeekCounts, anchor domain.WeekBucket, now time.Time) (domain.Series, error) {
	first, ok := counts.First()
	if !ok {
		return domain.Series{}, nil
	}
	return Assemble(counts, first, BucketOfTime(now, anchor))
}

// OverHorizon assembles from the week containing horizon up to the week
// containing now, emitting every week even when nothing was observed
func OverHorizon(counts *WeekCounts, anchor domain.WeekBucket, horizon, now time.Time) (domain.Series, error) {
	return Assemble(counts, BucketOfTime(horizon, anchor), BucketOfTime(now, anchor))
}
