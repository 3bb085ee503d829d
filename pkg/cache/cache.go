package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching services. Get returns "" and no error for a
// missing key. SetNX stores the value only if the key is absent and reports whether it did.
// CompareAndDelete removes the key only while it still holds value, as one atomic step.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
	Close() error
}
