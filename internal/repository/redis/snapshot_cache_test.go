package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "humesync/internal/adapters/redis"
	"humesync/internal/domain/agent"
	"humesync/internal/testsupport"
	"humesync/pkg/errors"
)

func TestSnapshotCache(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cache := NewSnapshotCache(redisclient.Wrap(testsupport.NewTestRedis(t)))
	ctx := context.Background()

	_, found, err := cache.Get(ctx, "cfg-1")
	require.NoError(t, err)
	assert.False(t, found)

	snap := agent.Snapshot{"id": "cfg-1", "name": "Closer", "version": float64(3)}
	require.NoError(t, cache.Set(ctx, "cfg-1", snap, time.Minute))

	got, found, err := cache.Get(ctx, "cfg-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, snap, got)

	require.NoError(t, cache.Invalidate(ctx, "cfg-1", ""))
	_, found, err = cache.Get(ctx, "cfg-1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Invalidate(ctx))
}

func TestCreateLock(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	lock := NewCreateLock(redisclient.Wrap(testsupport.NewTestRedis(t)))
	ctx := context.Background()

	token, ok, err := lock.Acquire(ctx, "Closer", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	other, ok, err := lock.Acquire(ctx, "Closer", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")
	assert.Empty(t, other)

	err = lock.Release(ctx, "Closer", "someone-else")
	assert.ErrorIs(t, err, errors.ErrLockLost)

	_, ok, err = lock.Acquire(ctx, "Closer", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "a foreign token must not release the lock")

	require.NoError(t, lock.Release(ctx, "Closer", token))
	assert.ErrorIs(t, lock.Release(ctx, "Closer", token), errors.ErrLockLost)

	next, ok, err := lock.Acquire(ctx, "Closer", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEqual(t, token, next)
}
