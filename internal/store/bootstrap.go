package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// schemaTable is the DDL view of a Table
type schemaTable interface {
	tableName() string
	columnDefs() []Column
	scopeColumn() string
}

func (t *Table[T]) tableName() string    { return t.Name }
func (t *Table[T]) columnDefs() []Column { return t.Columns }
func (t *Table[T]) scopeColumn() string  { return t.Scope }

// tables lists every table in dependency order
var tables = []schemaTable{Users, Groups, Causes, Objectives, Signatures, ActivityLogs, Sessions}

// Statements returns the DDL that creates every missing table and index
func Statements(d Dialect) []string {
	var stmts []string
	for _, t := range tables {
		stmts = append(stmts, createTable(d, t))
		stmts = append(stmts, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s_created_at_id_idx ON %s (created_at, id)",
			t.tableName(), t.tableName()))
		if scope := t.scopeColumn(); scope != "" {
			stmts = append(stmts, fmt.Sprintf(
				"CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s, created_at, id)",
				t.tableName(), scope, t.tableName(), scope))
		}
	}
	return stmts
}

func createTable(d Dialect, t schemaTable) string {
	defs := []string{
		"id " + d.sqlType(TypeID) + " PRIMARY KEY",
		"created_at " + d.sqlType(TypeTimestamp) + " NOT NULL",
		"updated_at " + d.sqlType(TypeTimestamp),
		"deleted_at " + d.sqlType(TypeTimestamp),
	}
	for _, c := range t.columnDefs() {
		def := c.Name + " " + d.sqlType(c.Type)
		if !c.Nullable {
			def += " NOT NULL"
		}
		if c.Unique {
			def += " UNIQUE"
		}
		if c.References != "" {
			def += fmt.Sprintf(" REFERENCES %s(id)", c.References)
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", t.tableName(), strings.Join(defs, ",\n\t"))
}

// Bootstrap creates missing tables and indexes in one transaction
func Bootstrap(ctx context.Context, db *sql.DB, d Dialect, logger *zap.Logger) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin bootstrap: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range Statements(d) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to bootstrap schema: %w", ConvertDBError(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bootstrap: %w", err)
	}

	logger.Info("schema ready", zap.Stringer("dialect", d), zap.Int("tables", len(tables)))
	return nil
}
