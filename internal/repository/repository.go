package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrVersionConflict is returned when an update loses an optimistic
// concurrency race. Callers should re-read the ticket and retry.
var ErrVersionConflict = errors.New("ticket version conflict")

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so statement helpers
// can run inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
