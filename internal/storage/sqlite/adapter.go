package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kurihiro0119/github-weekly-series/internal/domain"
	"github.com/kurihiro0119/github-weekly-series/internal/storage"
)

// sqliteJournal implements the Journal interface for SQLite
type sqliteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal creates a new SQLite journal instance
func NewSQLiteJournal(dbPath string) (storage.Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	j := &sqliteJournal{db: db}
	if err := j.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return j, nil
}

// Migrate runs database migrations
func (j *sqliteJournal) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS queries (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		owner TEXT NOT NULL,
		repo TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		duration_ms INTEGER NOT NULL,
		point_count INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_queries_owner_repo_started ON queries(owner, repo, started_at);
	`

	_, err := j.db.ExecContext(ctx, schema)
	return err
}

// SaveQuery records a finished query
func (j *sqliteJournal) SaveQuery(ctx context.Context, record *domain.QueryRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO queries (id, kind, owner, repo, started_at, duration_ms, point_count, outcome, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		string(record.Kind),
		record.Owner,
		record.Repo,
		record.StartedAt.UTC(),
		record.Duration.Milliseconds(),
		record.PointCount,
		string(record.Outcome),
		record.Message,
	)
	return err
}

// ListQueries returns the most recent queries for a repository
func (j *sqliteJournal) ListQueries(ctx context.Context, owner, repo string, limit int) ([]*domain.QueryRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, kind, owner, repo, started_at, duration_ms, point_count, outcome, message
		FROM queries
		WHERE owner = ? AND repo = ?
		ORDER BY started_at DESC
		LIMIT ?
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
func (j *sqliteJournal) Close() error {
	return j.db.Close()
}
