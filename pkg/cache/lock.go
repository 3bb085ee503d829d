package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrLockHeld is returned by AcquireLock when another holder owns the key.
var ErrLockHeld = errors.New("lock is held by another process")

// Lock is a lease on a cache key. It expires on its own after the TTL if never released.
type Lock struct {
	cache Cache
	key   string
	token string
}

// AcquireLock takes the lock named key for ttl using SETNX.
func AcquireLock(ctx context.Context, c Cache, key string, ttl time.Duration) (*Lock, error) {
	token := uuid.NewString()
	ok, err := c.SetNX(ctx, key, token, ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{cache: c, key: key, token: token}, nil
}

// Release frees the lock if it is still owned by this holder. A lease that expired and
// was taken by someone else is left alone.
func (l *Lock) Release(ctx context.Context) error {
	_, err := l.cache.CompareAndDelete(ctx, l.key, l.token)
	return err
}
