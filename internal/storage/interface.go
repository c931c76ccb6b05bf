package storage

import (
	"context"

	"github.com/kurihiro0119/github-weekly-series/internal/domain"
)

// Journal is the abstract interface for the query journal. It stores the
// outcome of each series query, never the series itself.
type Journal interface {
	// SaveQuery records a finished query
	SaveQuery(ctx context.Context, record *domain.QueryRecord) error

	// ListQueries returns the most recent queries for a repository, newest first
	ListQueries(ctx context.Context, owner, repo string, limit int) ([]*domain.QueryRecord, error)

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}

// nopJournal discards every record
type nopJournal struct{}

// NewNopJournal returns a Journal that records nothing
func NewNopJournal() Journal {
	return nopJournal{}
}

func (nopJournal) SaveQuery(context.Context, *domain.QueryRecord) error { return nil }

func (nopJournal) ListQueries(context.Context, string, string, int) ([]*domain.QueryRecord, error) {
	return []*domain.QueryRecord{}, nil
}

func (nopJournal) Migrate(context.Context) error { return nil }

func (nopJournal) Close() error { return nil }
