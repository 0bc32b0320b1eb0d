package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so catalog
// and share repositories run unchanged inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}

type pgxTxKey struct{}

// SetTx returns a context carrying tx
func SetTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, pgxTxKey{}, tx)
}

// GetTx returns the transaction carried by ctx, nil outside one
func GetTx(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(pgxTxKey{}).(pgx.Tx)
	return tx
}

// InTx reports whether ctx already carries a transaction. Nested
// ExecTx/ExecReadTx calls join it instead of opening another.
func InTx(ctx context.Context) bool {
	return GetTx(ctx) != nil
}
