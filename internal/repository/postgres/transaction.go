package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"filehub/internal/domain"
	"filehub/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// txRetryDelay is the pause before the single retry of a failed transaction
const txRetryDelay = 50 * time.Millisecond

// TransactionManager implements the TransactionManager interface
type TransactionManager struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(pool *pgxpool.Pool, logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{pool: pool, logger: logger}
}

// ExecTx executes a function within a read-committed transaction, retrying
// the whole function once on transient faults.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if repositories.InTx(ctx) {
		return fn(ctx)
	}

	return withRetry(ctx, tm.logger, func(ctx context.Context) error {
		return tm.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
	})
}

// ExecReadTx executes a function within a read-only repeatable-read snapshot.
// Reads are not retried: fn may already have handed rows to its caller.
func (tm *TransactionManager) ExecReadTx(ctx context.Context, fn repositories.TxFn) error {
	if repositories.InTx(ctx) {
		return fn(ctx)
	}

	err := tm.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
	if err != nil && IsRetryableError(err) {
		return &domain.StorageUnavailableError{Err: err}
	}
	return err
}

func (tm *TransactionManager) run(ctx context.Context, opts pgx.TxOptions, fn repositories.TxFn) error {
	tx, err := tm.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Defer rollback - safe even if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			tm.logger.Warn("rollback failed", "error", err)
		}
	}()

	// Store transaction in context so repositories can access it
	if err := fn(repositories.SetTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// withRetry runs fn, retrying once when it fails with a transient storage
// fault. A fault that persists becomes *domain.StorageUnavailableError; any
// other error is returned untouched.
func withRetry(ctx context.Context, logger *slog.Logger, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(1, retry.NewConstant(txRetryDelay))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err != nil && IsRetryableError(err) {
			logger.Warn("transaction failed, retrying", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil && IsRetryableError(err) {
		return &domain.StorageUnavailableError{Err: err}
	}
	return err
}
