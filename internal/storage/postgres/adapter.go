package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"github.com/kurihiro0119/github-weekly-series/internal/domain"
	"github.com/kurihiro0119/github-weekly-series/internal/storage"
)

// postgresJournal implements the Journal interface for PostgreSQL
type postgresJournal struct {
	db *sql.DB
}

// NewPostgresJournal creates a new PostgreSQL journal instance
func NewPostgresJournal(connStr string) (storage.Journal, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	j := &postgresJournal{db: db}
	if err := j.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return j, nil
}

// Migrate runs database migrations
func (j *postgresJournal) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS queries (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		owner TEXT NOT NULL,
		repo TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		duration_ms BIGINT NOT NULL,
		point_count INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_queries_owner_repo_started ON queries(owner, repo, started_at DESC);
	`

	_, err := j.db.ExecContext(ctx, schema)
	return err
}

// SaveQuery records a finished query
func (j *postgresJournal) SaveQuery(ctx context.Context, record *domain.QueryRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO queries (id, kind, owner, repo, started_at, duration_ms, point_count, outcome, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`,
		record.ID,
		string(record.Kind),
		record.Owner,
		record.Repo,
		record.StartedAt,
		record.Duration.Milliseconds(),
		record.PointCount,
		string(record.Outcome),
		record.Message,
	)
	return err
}

// ListQueries returns the most recent queries for a repository
func (j *postgresJournal) ListQueries(ctx context.Context, owner, repo string, limit int) ([]*domain.QueryRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, kind, owner, repo, started_at, duration_ms, point_count, outcome, message
		FROM queries
		WHERE owner = $1 AND repo = $2
		ORDER BY started_at DESC
		LIMIT $3
	`, owner, repo, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*domain.QueryRecord{}
	for rows.Next() {
		var (
			r          domain.QueryRecord
			kind       string
			outcome    string
			durationMs int64
		)
		if err := rows.Scan(&r.ID, &kind, &r.Owner, &r.Repo, &r.StartedAt, &durationMs, &r.PointCount, &outcome, &r.Message); err != nil {
			return nil, err
		}
		r.Kind = domain.SeriesKind(kind)
		r.Outcome = domain.QueryOutcome(outcome)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, &r)
	}

	return records, rows.Err()
}

// Close closes the database connection
func (j *postgresJournal) Close() error {
	return j.db.Close()
}
