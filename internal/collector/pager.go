package collector

import (
	"context"
	"fmt"
)

const (
	// DefaultPageLimit is the maximum number of pages fetched per resource
	DefaultPageLimit = 10
	// DefaultPerPage is the page size requested from the source
	DefaultPerPage = 100
)

// PageRequest identifies a single page of a paginated resource
type PageRequest struct {
	Page    int
	PerPage int
	Params  map[string]string
}

// PageOptions bounds a paginated fetch
type PageOptions struct {
	PageLimit int
	PerPage   int
}

// DefaultPageOptions returns the default page ceiling and page size
func DefaultPageOptions() PageOptions {
	return PageOptions{PageLimit: DefaultPageLimit, PerPage: DefaultPerPage}
}

func (o PageOptions) normalized() PageOptions {
	if o.PageLimit <= 0 {
		o.PageLimit = DefaultPageLimit
	}
	if o.PerPage <= 0 {
		o.PerPage = DefaultPerPage
	}
	return o
}

// PageFunc fetches one page of T
type PageFunc[T any] func(ctx context.Context, req PageRequest) ([]T, error)

// FetchPages requests pages 1..PageLimit in order and returns their concatenation.
// It stops early on an empty page or a page shorter than PerPage. Any error
// discards everything fetched so far.
func FetchPages[T any](ctx context.Context, opts PageOptions, params map[string]string, fetch PageFunc[T]) ([]T, error) {
	opts = opts.normalized()

	var all []T
	for page := 1; page <= opts.PageLimit; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, err := fetch(ctx, PageRequest{Page: page, PerPage: opts.PerPage, Params: params})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		if len(items) == 0 {
			break
		}
		all = append(all, items...)

		if len(items) < opts.PerPage {
			break
		}
	}

	return all, nil
}
