package store

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Dialect selects the SQL variant spoken by the configured driver
type Dialect int

const (
	// Postgres covers both the pgx and lib/pq drivers
	Postgres Dialect = iota
	// SQLite is the mattn/go-sqlite3 driver
	SQLite
)

// DialectFor maps a database/sql driver name to its dialect
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return Postgres, nil
	case "sqlite3":
		return SQLite, nil
	default:
		return 0, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// String returns the dialect name
func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

// ColumnType is the portable type of a column
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInteger
	TypeBoolean
	TypeTimestamp
	TypeID
)

// sqlType returns the column type in d
func (d Dialect) sqlType(t ColumnType) string {
	switch t {
	case TypeInteger:
		if d == SQLite {
			return "INTEGER"
		}
		return "BIGINT"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeTimestamp:
		if d == SQLite {
			return "TIMESTAMP"
		}
		return "TIMESTAMPTZ"
	case TypeID:
		if d == SQLite {
			return "TEXT"
		}
		return "UUID"
	default:
		return "TEXT"
	}
}

// inList renders a membership predicate for ids. PostgreSQL receives one
// array parameter; SQLite receives one parameter per id.
func (d Dialect) inList(q *selectQuery, column string, ids []string) string {
	if d == Postgres {
		return fmt.Sprintf("%s = ANY(%s)", column, q.param(pq.Array(ids)))
	}
	params := make([]string, len(ids))
	for i, id := range ids {
		params[i] = q.param(id)
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(params, ", "))
}
