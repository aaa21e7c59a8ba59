package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgExecutor abstracts over a pool or transaction so repositories can run
// inside either.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgTxBeginner is satisfied by pools (and pool mocks) that can open
// transactions.
type pgTxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
