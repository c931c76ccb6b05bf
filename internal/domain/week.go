package domain

import "time"

// WeekSeconds is the width of a week bucket
const WeekSeconds int64 = 7 * 24 * 60 * 60

// WeekBucket is the Unix timestamp (seconds) of the start of a week bucket
type WeekBucket int64

// Time returns the bucket start as a UTC time
func (w WeekBucket) Time() time.Time {
	return time.Unix(int64(w), 0).UTC()
}

// Next returns the bucket that follows w
func (w WeekBucket) Next() WeekBucket {
	return w + WeekBucket(WeekSeconds)
}

// TimeSeriesPoint represents a single week in a series
type TimeSeriesPoint struct {
	Week  WeekBucket `json:"week"`
	Value int64      `json:"value"`
}

// Series is a chronologically ordered sequence of weekly points
type Series []TimeSeriesPoint

// Weeks returns the week keys of the series in order
func (s Series) Weeks() []WeekBucket {
	weeks := make([]WeekBucket, len(s))
	for i, p := range s {
		weeks[i] = p.Week
	}
	return weeks
}

// Total returns the sum of all point values
func (s Series) Total() int64 {
	var total int64
	for _, p := range s {
		total += p.Value
	}
	return total
}
