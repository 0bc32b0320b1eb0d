package memory

import (
	"context"

	"filehub/internal/domain/repositories"
)

// TransactionManager serialises writers on the store and restores the
// pre-transaction snapshot when fn fails.
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager over store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx executes fn atomically. Nested calls join the outer transaction.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	tm.store.mu.Lock()
	defer tm.store.mu.Unlock()

	snapshot := tm.store.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		tm.store.state = snapshot
		return err
	}
	return nil
}

// ExecReadTx runs fn without holding the store; each repository call reads
// under its own lock and iterators work on copies.
func (tm *TransactionManager) ExecReadTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}
