package store

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestConvertDBError(t *testing.T) {
	other := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), ErrNotFound},
		{"pgx unique", &pgconn.PgError{Code: "23505", Detail: "Key (email)=(a) already exists."}, ErrUniqueViolation},
		{"pgx foreign key", &pgconn.PgError{Code: "23503"}, ErrForeignKeyViolation},
		{"pgx check", &pgconn.PgError{Code: "23514"}, ErrCheckViolation},
		{"pgx not null", &pgconn.PgError{Code: "23502", ColumnName: "title"}, ErrNotNullViolation},
		{"pq unique", &pq.Error{Code: "23505"}, ErrUniqueViolation},
		{"pq foreign key", &pq.Error{Code: "23503"}, ErrForeignKeyViolation},
		{"unrelated", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertDBError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}

	t.Run("not null names the column", func(t *testing.T) {
		err := ConvertDBError(&pgconn.PgError{Code: "23502", ColumnName: "title"})
		assert.EqualError(t, err, "not null constraint violation: column title")
	})

	t.Run("unknown pg code passes through", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "40001"}
		assert.Same(t, pgErr, ConvertDBError(pgErr))
	})
}

func TestDialectFor(t *testing.T) {
	for driver, want := range map[string]Dialect{"pgx": Postgres, "postgres": Postgres, "sqlite3": SQLite} {
		got, err := DialectFor(driver)
		assert.NoError(t, err)
		assert.Equal(t, want, got, driver)
	}

	_, err := DialectFor("mysql")
	assert.Error(t, err)
}
