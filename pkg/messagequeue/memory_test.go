package messagequeue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueuePublishConsume(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, q.Publish(ctx, "orders", []byte("one")))
	require.NoError(t, q.Publish(ctx, "orders", []byte("two")))
	assert.Equal(t, 2, q.Pending("orders"))

	received := make(chan string, 2)
	go func() {
		_ = q.Consume(ctx, "orders", func(_ context.Context, body []byte) error {
			received <- string(body)
			if string(body) == "one" {
				return errors.New("dropped")
			}
			return nil
		})
	}()

	assert.Equal(t, "one", <-received)
	assert.Equal(t, "two", <-received)

	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Publish(context.Background(), "orders", []byte("late")), ErrQueueClosed)
}

func TestMemoryQueuePublishDoesNotBlockWhenFull(t *testing.T) {
	q := NewMemoryQueue(1)
	require.NoError(t, q.Publish(context.Background(), "full", []byte("a")))

	start := time.Now()
	assert.ErrorIs(t, q.Publish(context.Background(), "full", []byte("b")), ErrQueueFull)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, 1, q.Pending("full"))

	// Other queues are unaffected.
	require.NoError(t, q.Publish(context.Background(), "other", []byte("c")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, q.Publish(ctx, "other", []byte("d")), context.Canceled)
}
