package domain

import "time"

// QueryOutcome is the result code recorded for a query
type QueryOutcome string

const (
	QueryOutcomeOK QueryOutcome = "OK"
)

// QueryRecord represents a journal entry for one series query. It records the
// outcome only; series values are never stored.
type QueryRecord struct {
	ID         string        `json:"id"`
	Kind       SeriesKind    `json:"kind"`
	Owner      string        `json:"owner"`
	Repo       string        `json:"repo"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	PointCount int           `json:"point_count"`
	Outcome    QueryOutcome  `json:"outcome"`
	Message    string        `json:"message,omitempty"`
}
