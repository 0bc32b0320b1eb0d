package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions.
// A call made with a context that already carries a transaction joins it.
type TransactionManager interface {
	// ExecTx executes a function within a read-write transaction.
	// Transient storage faults are retried once before surfacing
	// as domain.ErrStorageUnavailable.
	ExecTx(ctx context.Context, fn TxFn) error

	// ExecReadTx executes a function within a read-only snapshot.
	ExecReadTx(ctx context.Context, fn TxFn) error
}
