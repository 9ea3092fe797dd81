package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/conduit-lang/causeway/internal/pagination"
)

// selectQuery builds a SELECT with numbered placeholders. Arguments are
// numbered in the order predicates are added so the text reads $1, $2, ...
// left to right, which SQLite relies on for positional binding.
type selectQuery struct {
	table      string
	columns    []string
	conditions []string
	orderBy    []string
	limit      *int
	args       []any
}

func newSelect(table string, columns ...string) *selectQuery {
	return &selectQuery{
		table:   table,
		columns: columns,
	}
}

// param registers a bind value and returns its placeholder
func (q *selectQuery) param(value any) string {
	q.args = append(q.args, value)
	return fmt.Sprintf("$%d", len(q.args))
}

// Where adds an AND condition. Each %s in format is replaced by a
// placeholder for the matching value.
func (q *selectQuery) Where(format string, values ...any) *selectQuery {
	params := make([]any, len(values))
	for i, v := range values {
		params[i] = q.param(v)
	}
	q.conditions = append(q.conditions, fmt.Sprintf(format, params...))
	return q
}

// WhereRaw adds an AND condition that was rendered by the caller
func (q *selectQuery) WhereRaw(cond string) *selectQuery {
	q.conditions = append(q.conditions, cond)
	return q
}

// OrderBy adds an ORDER BY term
func (q *selectQuery) OrderBy(column string, order pagination.Order) *selectQuery {
	q.orderBy = append(q.orderBy, fmt.Sprintf("%s %s", column, order))
	return q
}

// Limit sets the LIMIT clause
func (q *selectQuery) Limit(n int) *selectQuery {
	q.limit = &n
	return q
}

// ToSQL generates the SQL query and parameter bindings
func (q *selectQuery) ToSQL() (string, []any) {
	var sb strings.Builder
	args := slices.Clone(q.args)

	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(q.columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(q.table)

	if len(q.conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(q.conditions, " AND "))
	}

	if len(q.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(q.orderBy, ", "))
	}

	if q.limit != nil {
		args = append(args, *q.limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	return sb.String(), args
}

// placeholders returns "$from, $from+1, ..." for n values
func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ps, ", ")
}
