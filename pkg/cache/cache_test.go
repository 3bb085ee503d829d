package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", 42, time.Minute))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	now = now.Add(2 * time.Minute)
	v, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestAcquireLock(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	first, err := AcquireLock(ctx, c, "lock:migration", time.Minute)
	require.NoError(t, err)

	_, err = AcquireLock(ctx, c, "lock:migration", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, first.Release(ctx))
	second, err := AcquireLock(ctx, c, "lock:migration", time.Minute)
	require.NoError(t, err)

	// An expired lease can be taken over, and the stale holder's release is a no-op.
	now = now.Add(2 * time.Minute)
	third, err := AcquireLock(ctx, c, "lock:migration", time.Minute)
	require.NoError(t, err)
	require.NoError(t, second.Release(ctx))

	_, err = AcquireLock(ctx, c, "lock:migration", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)
	require.NoError(t, third.Release(ctx))
}

func TestMemoryCacheCompareAndDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "owner", time.Minute))

	deleted, err := c.CompareAndDelete(ctx, "k", "someone-else")
	require.NoError(t, err)
	assert.False(t, deleted)
	v, _ := c.Get(ctx, "k")
	assert.Equal(t, "owner", v)

	deleted, err = c.CompareAndDelete(ctx, "k", "owner")
	require.NoError(t, err)
	assert.True(t, deleted)
	v, _ = c.Get(ctx, "k")
	assert.Empty(t, v)

	require.NoError(t, c.Set(ctx, "k", "owner", time.Minute))
	now = now.Add(2 * time.Minute)
	deleted, err = c.CompareAndDelete(ctx, "k", "owner")
	require.NoError(t, err)
	assert.False(t, deleted, "expired entries are not deleted as if owned")
}

func TestLockReleaseRacesWithTakeover(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	stale, err := AcquireLock(ctx, c, "lock:migration", time.Minute)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)

	var wg sync.WaitGroup
	holders := make(chan *Lock, 1)
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, stale.Release(ctx))
	}()
	go func() {
		defer wg.Done()
		lock, err := AcquireLock(ctx, c, "lock:migration", time.Minute)
		assert.NoError(t, err)
		holders <- lock
	}()
	wg.Wait()
	current := <-holders

	// Whatever the interleaving, the new holder keeps the key.
	_, err = AcquireLock(ctx, c, "lock:migration", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)
	require.NoError(t, current.Release(ctx))
}
