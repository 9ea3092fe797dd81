package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/causeway/internal/domain"
	"github.com/conduit-lang/causeway/internal/pagination"
)

// Scope nests a source under a parent row
type Scope struct {
	Column string
	Value  string
}

// Source runs keyset queries for the paginator. Rows are ordered by
// (created_at, id) and soft-deleted rows are never returned.
type Source[T domain.Entity] struct {
	repo  *Repository[T]
	scope *Scope
}

var _ pagination.Source[*domain.ActivityLog] = (*Source[*domain.ActivityLog])(nil)

// Locate reports whether id names any row of the table. Scope and soft
// deletion do not apply, so a hidden row still anchors a cursor.
func (s *Source[T]) Locate(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)", s.repo.table.Name)

	var exists bool
	if err := s.repo.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to locate %s %s: %w", s.repo.table.Name, id, ConvertDBError(err))
	}
	return exists, nil
}

// Fetch returns up to q.Limit live rows strictly beyond q.After in q.Order
func (s *Source[T]) Fetch(ctx context.Context, q pagination.Query) ([]T, error) {
	query, args, err := s.build(q)
	if err != nil {
		return nil, err
	}

	s.repo.logger.Debug("fetching page",
		zap.String("sql", query),
		zap.Stringer("order", q.Order),
		zap.Int("limit", q.Limit))

	return s.repo.query(ctx, query, args)
}

func (s *Source[T]) build(q pagination.Query) (string, []any, error) {
	table := s.repo.table
	sel := newSelect(table.Name, table.selectList()...).
		WhereRaw("deleted_at IS NULL")

	if s.scope != nil {
		sel.Where(s.scope.Column+" = %s", s.scope.Value)
	}

	if q.Filter != nil {
		column, ok := table.Filterable[q.Filter.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s on %s", ErrUnknownFilter, q.Filter.Field, table.Name)
		}
		sel.Where(fmt.Sprintf("%s %s %%s", column, q.Filter.Operator.Symbol()), q.Filter.Value)
	}

	if q.After != "" {
		op := ">"
		if q.Order == pagination.Descending {
			op = "<"
		}
		sel.Where(fmt.Sprintf("(created_at, id) %s (SELECT created_at, id FROM %s WHERE id = %%s)", op, table.Name), q.After)
	}

	sel.OrderBy("created_at", q.Order).
		OrderBy("id", q.Order).
		Limit(q.Limit)

	query, args := sel.ToSQL()
	return query, args, nil
}
