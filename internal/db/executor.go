package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Executor is the storage handle threaded through repositories and jobs. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so a job issues the same writes whether
// the caller wrapped the dispatch in a transaction or not. Commit/rollback
// stays with the caller.
type Executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
