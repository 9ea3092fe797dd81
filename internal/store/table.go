package store

import (
	"maps"
	"slices"

	"github.com/conduit-lang/causeway/internal/domain"
)

// Column describes one physical column owned by an entity type
type Column struct {
	Name       string
	Type       ColumnType
	Nullable   bool
	References string // referenced table, if any
	Unique     bool
}

// Table maps an entity type to its table. The id, created_at, updated_at
// and deleted_at columns are shared by every table and handled here.
type Table[T domain.Entity] struct {
	Name    string
	Columns []Column
	// Computed are read-only select expressions appended after Columns
	Computed []string
	// Filterable maps filter field names to columns
	Filterable map[string]string
	// Scope is the column that nests rows under a parent, if any
	Scope string
	New   func() T
	// Fields returns pointers to the entity fields backing Columns then Computed
	Fields func(T) []any
}

var baseColumns = []string{"id", "created_at", "updated_at", "deleted_at"}

// immutableColumns counts the leading baseColumns never rewritten by Update
const immutableColumns = 2

// selectList returns the columns and expressions read for each row
func (t *Table[T]) selectList() []string {
	list := make([]string, 0, len(baseColumns)+len(t.Columns)+len(t.Computed))
	list = append(list, baseColumns...)
	for _, c := range t.Columns {
		list = append(list, c.Name)
	}
	return append(list, t.Computed...)
}

// writeColumns returns the columns written on insert, in order
func (t *Table[T]) writeColumns() []string {
	list := make([]string, 0, len(baseColumns)+len(t.Columns))
	list = append(list, baseColumns...)
	for _, c := range t.Columns {
		list = append(list, c.Name)
	}
	return list
}

// FilterFields lists the filter names the table accepts
func (t *Table[T]) FilterFields() []string {
	return slices.Sorted(maps.Keys(t.Filterable))
}

// scanTargets returns scan destinations for one row of selectList
func (t *Table[T]) scanTargets(e T) []any {
	b := e.Meta()
	targets := []any{&b.ID, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt}
	return append(targets, t.Fields(e)...)
}

// writeValues returns bind values for writeColumns
func (t *Table[T]) writeValues(e T) []any {
	b := e.Meta()
	values := []any{b.ID, b.CreatedAt, b.UpdatedAt, b.DeletedAt}
	return append(values, t.Fields(e)[:len(t.Columns)]...)
}

// Scanner is satisfied by *sql.Row and *sql.Rows
type Scanner interface {
	Scan(dest ...any) error
}

func (t *Table[T]) scan(row Scanner) (T, error) {
	e := t.New()
	if err := row.Scan(t.scanTargets(e)...); err != nil {
		var zero T
		return zero, err
	}
	return e, nil
}
