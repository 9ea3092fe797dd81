// Package pagination pages through an append-mostly, creation-ordered log
// with an opaque row cursor instead of numeric offsets, and derives the
// first/prev/next navigation links of each page.
package pagination

import (
	"context"
	"fmt"
	"slices"
)

// DefaultLimit is the page size used when none is configured
const DefaultLimit = 10

// Identifiable is a row that can anchor a cursor
type Identifiable interface {
	EntityID() string
}

// Query is one fetch against a row source
type Query struct {
	// Order is the walking direction for this fetch
	Order Order
	// After is the anchor row id; rows strictly beyond it in Order are
	// returned. Empty means from the start of the sequence.
	After string
	// Filter restricts candidate rows; nil means no restriction
	Filter *Filter
	// Limit caps the number of rows returned
	Limit int
}

// Source is the repository-side row executor. Rows are ordered by creation
// time with the id as tie-breaker.
type Source[T Identifiable] interface {
	// Locate reports whether id names a row of the unfiltered sequence
	Locate(ctx context.Context, id string) (bool, error)
	// Fetch returns up to q.Limit filtered rows beyond q.After in q.Order
	Fetch(ctx context.Context, q Query) ([]T, error)
}

// Paginator carries the per-request paging state
type Paginator struct {
	Limit  int
	Order  Order
	Cursor string
	Points Points
	Filter *Filter
}

// Page is one page of rows plus what the link builder needs
type Page[T Identifiable] struct {
	Items  []T
	Filter *Filter
	Order  Order
}

// Len returns the number of rows in the page
func (p *Page[T]) Len() int {
	return len(p.Items)
}

// Bounds returns the ids of the first and last rows; ok is false for an empty page
func (p *Page[T]) Bounds() (first, last string, ok bool) {
	if len(p.Items) == 0 {
		return "", "", false
	}
	return p.Items[0].EntityID(), p.Items[len(p.Items)-1].EntityID(), true
}

// Paginate computes exactly one page from src.
//
// Without a cursor the page is the first Limit filtered rows in Order. With a
// cursor pointing LAST it is the next Limit filtered rows after the cursor;
// pointing FIRST it is the Limit filtered rows immediately before it. Rows
// are always returned in Order. A cursor that names no row yields an empty
// page.
func Paginate[T Identifiable](ctx context.Context, p *Paginator, src Source[T]) (*Page[T], error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	page := &Page[T]{Filter: p.Filter, Order: p.Order}
	q := Query{Order: p.Order, Filter: p.Filter, Limit: limit}

	if p.Cursor != "" {
		if err := ValidateCursor(p.Cursor); err != nil {
			return nil, err
		}
		found, err := src.Locate(ctx, p.Cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to locate cursor: %w", err)
		}
		if !found {
			return page, nil
		}
		q.After = p.Cursor
		if p.Points == PointsFirst {
			q.Order = p.Order.Reverse()
		}
	}

	items, err := src.Fetch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	if len(items) > limit {
		items = items[:limit]
	}
	if q.Order != p.Order {
		slices.Reverse(items)
	}

	page.Items = items
	return page, nil
}
