package database

import (
	"context"
	"database/sql"
	"regexp"
)

// Dialect selects the SQL flavour a repository talks to.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

var numberedParam = regexp.MustCompile(`\$\d+`)

// Rebind rewrites $1..$n placeholders for the dialect. Queries in this package use every
// placeholder once and in ascending order, so SQLite's positional '?' binds the same arguments.
func (d Dialect) Rebind(query string) string {
	if d == SQLite {
		return numberedParam.ReplaceAllString(query, "?")
	}
	return query
}

// lockRow is appended to a SELECT that aliases maintenance_schedules as 's'.
func (d Dialect) lockRow() string {
	if d == Postgres {
		return " FOR UPDATE OF s"
	}
	return "" // SQLite serializes writers on the database
}

func (d Dialect) schemaFile() string {
	if d == SQLite {
		return "schema_sqlite.sql"
	}
	return "schema_postgres.sql"
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
