package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"filehub/internal/domain"
	"filehub/internal/logger"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWithRetry(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001"}
	permanent := errors.New("syntax error")

	tests := []struct {
		name         string
		results      []error
		wantAttempts int
		wantErr      error
		wantStorage  bool
	}{
		{
			name:         "success on first attempt",
			results:      []error{nil},
			wantAttempts: 1,
		},
		{
			name:         "transient fault retried once",
			results:      []error{serialization, nil},
			wantAttempts: 2,
		},
		{
			name:         "persistent fault becomes storage unavailable",
			results:      []error{serialization, fmt.Errorf("commit transaction: %w", serialization)},
			wantAttempts: 2,
			wantStorage:  true,
		},
		{
			name:         "permanent error is not retried",
			results:      []error{permanent},
			wantAttempts: 1,
			wantErr:      permanent,
		},
		{
			name:         "domain error passes through",
			results:      []error{&domain.ConflictError{Message: "dup"}},
			wantAttempts: 1,
			wantErr:      domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := withRetry(context.Background(), logger.Nop(), func(context.Context) error {
				result := tt.results[attempts]
				attempts++
				return result
			})

			assert.Equal(t, tt.wantAttempts, attempts)
			switch {
			case tt.wantStorage:
				var storageErr *domain.StorageUnavailableError
				assert.ErrorAs(t, err, &storageErr)
				assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"wrapped serialization failure", fmt.Errorf("update: %w", &pgconn.PgError{Code: "40001"}), true},
		{"canceled", context.Canceled, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.err))
		})
	}
}
