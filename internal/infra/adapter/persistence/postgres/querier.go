// Package postgres implements the repository interfaces on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
)

// Querier is the slice of database/sql the repositories need. Both
// *sql.DB and the circuit-breaker wrapper around it satisfy it, so the
// wiring decides whether reads and writes go through breaker protection.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}
