package database

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBusyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "database is locked", err: errors.New("database is locked"), want: true},
		{name: "database table is locked", err: errors.New("database table is locked"), want: true},
		{name: "SQLITE_BUSY", err: errors.New("SQLITE_BUSY: database busy"), want: true},
		{name: "SQLITE_LOCKED", err: errors.New("SQLITE_LOCKED"), want: true},
		{name: "modernc busy code", err: errors.New("database is locked (5) (SQLITE_BUSY)"), want: true},
		{name: "unrelated error", err: errors.New("no such table: manga"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isBusyError(tt.err))
		})
	}
}

func TestRetryWithBackoff(t *testing.T) {
	t.Run("succeeds on first attempt", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(context.Background(), 3, func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries busy errors until success", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(context.Background(), 3, func() error {
			calls++
			if calls < 3 {
				return errors.New("database is locked")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry non-busy errors", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(context.Background(), 3, func() error {
			calls++
			return errors.New("no such table: manga")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(context.Background(), 2, func() error {
			calls++
			return errors.New("SQLITE_BUSY")
		})
		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := retryWithBackoff(ctx, 10, func() error {
			return errors.New("database is locked")
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
