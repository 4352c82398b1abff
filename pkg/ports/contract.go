package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLockerContract runs a suite of tests to verify that a Locker implementation
// refuses a held key with errConcurrent and frees keys on unlock.
// Implementations must be configured not to wait for a held lock.
func RunLockerContract(t *testing.T, locker Locker, errConcurrent error) {
	ctx := context.Background()
	key := "contract-task-" + time.Now().Format("20060102150405.000")

	t.Run("Lock and Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, time.Minute)
		require.NoError(t, err, "first Lock should succeed")
		require.NotNil(t, unlock)

		require.NoError(t, unlock(ctx), "Unlock should not return error")

		unlock, err = locker.Lock(ctx, key, time.Minute)
		require.NoError(t, err, "Lock after Unlock should succeed")
		require.NoError(t, unlock(ctx))
	})

	t.Run("Held key is refused", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, time.Minute)
		require.NoError(t, err)
		defer func() { _ = unlock(ctx) }()

		_, err = locker.Lock(ctx, key, time.Minute)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errConcurrent), "expected concurrent-task error, got %v", err)
	})

	t.Run("Independent keys", func(t *testing.T) {
		u1, err := locker.Lock(ctx, key+"-a", time.Minute)
		require.NoError(t, err)
		u2, err := locker.Lock(ctx, key+"-b", time.Minute)
		require.NoError(t, err)
		require.NoError(t, u1(ctx))
		require.NoError(t, u2(ctx))
	})
}
