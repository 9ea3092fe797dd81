// Package store persists domain entities in PostgreSQL or SQLite through
// database/sql and serves keyset-paginated row sources.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/causeway/internal/domain"
	"github.com/conduit-lang/causeway/internal/pagination"
)

// Repository reads and writes one entity type
type Repository[T domain.Entity] struct {
	db      *sql.DB
	dialect Dialect
	table   *Table[T]
	logger  *zap.Logger
	now     func() time.Time
}

// NewRepository creates a repository for table
func NewRepository[T domain.Entity](db *sql.DB, dialect Dialect, table *Table[T], logger *zap.Logger) *Repository[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository[T]{
		db:      db,
		dialect: dialect,
		table:   table,
		logger:  logger.With(zap.String("table", table.Name)),
		now:     time.Now,
	}
}

// Table returns the table descriptor
func (r *Repository[T]) Table() *Table[T] {
	return r.table
}

// Find retrieves a live record by its primary key
func (r *Repository[T]) Find(ctx context.Context, id string) (T, error) {
	q := newSelect(r.table.Name, r.table.selectList()...).
		Where("id = %s", id).
		WhereRaw("deleted_at IS NULL")
	query, args := q.ToSQL()

	e, err := r.table.scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to find %s %s: %w", r.table.Name, id, ConvertDBError(err))
	}
	return e, nil
}

// FindMany retrieves the live records among ids, in creation order.
// Missing ids are skipped.
func (r *Repository[T]) FindMany(ctx context.Context, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := newSelect(r.table.Name, r.table.selectList()...)
	q.WhereRaw(r.dialect.inList(q, "id", ids)).
		WhereRaw("deleted_at IS NULL").
		OrderBy("created_at", pagination.Ascending).
		OrderBy("id", pagination.Ascending)
	query, args := q.ToSQL()

	return r.query(ctx, query, args)
}

// FindEntities is FindMany for callers that do not know T
func (r *Repository[T]) FindEntities(ctx context.Context, ids []string) ([]domain.Entity, error) {
	rows, err := r.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Entity, len(rows))
	for i, row := range rows {
		out[i] = row
	}
	return out, nil
}

// Insert stamps and stores a new record
func (r *Repository[T]) Insert(ctx context.Context, e T) error {
	e.Meta().Stamp(r.now())

	columns := r.table.writeColumns()
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.table.Name,
		strings.Join(columns, ", "),
		placeholders(1, len(columns)))

	if _, err := r.db.ExecContext(ctx, query, r.table.writeValues(e)...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", r.table.Name, ConvertDBError(err))
	}

	r.logger.Debug("inserted record", zap.String("id", e.EntityID()))
	return nil
}

// Update writes the mutable columns of a live record and sets updated_at.
// id and created_at are fixed at insert.
func (r *Repository[T]) Update(ctx context.Context, e T) error {
	e.Meta().Touch(r.now())

	columns := r.table.writeColumns()[immutableColumns:]
	values := r.table.writeValues(e)[immutableColumns:]

	assignments := make([]string, len(columns))
	for i, col := range columns {
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d AND deleted_at IS NULL",
		r.table.Name,
		strings.Join(assignments, ", "),
		len(columns)+1)

	return r.exec(ctx, "update", query, append(values, e.EntityID())...)
}

// SoftDelete marks a live record deleted. It remains addressable as a cursor.
func (r *Repository[T]) SoftDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL", r.table.Name)
	return r.exec(ctx, "delete", query, r.now().UTC(), id)
}

// Source returns a row source over live records, optionally nested under a
// parent through the table's scope column.
func (r *Repository[T]) Source(scope *Scope) *Source[T] {
	return &Source[T]{repo: r, scope: scope}
}

func (r *Repository[T]) exec(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", op, r.table.Name, ConvertDBError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", op, r.table.Name, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to %s %s: %w", op, r.table.Name, ErrNotFound)
	}
	return nil
}

func (r *Repository[T]) query(ctx context.Context, query string, args []any) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.table.Name, ConvertDBError(err))
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		e, err := r.table.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.table.Name, ConvertDBError(err))
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.table.Name, ConvertDBError(err))
	}

	return results, nil
}
