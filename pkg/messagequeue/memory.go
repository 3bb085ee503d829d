package messagequeue

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrQueueClosed is returned when publishing to a closed MemoryQueue.
	ErrQueueClosed = errors.New("queue closed")
	// ErrQueueFull is returned when a MemoryQueue has no room for another message.
	ErrQueueFull = errors.New("queue full")
)

// MemoryQueue is an in-process MessageQueue. Published messages are buffered per queue until
// a consumer reads them.
type MemoryQueue struct {
	mu     sync.Mutex
	queues map[string]chan []byte
	size   int
	closed bool
	done   chan struct{}
}

// NewMemoryQueue creates a MemoryQueue holding up to size messages per queue.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 128
	}
	return &MemoryQueue{queues: make(map[string]chan []byte), size: size, done: make(chan struct{})}
}

func (q *MemoryQueue) queue(name string) (chan []byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}
	ch, ok := q.queues[name]
	if !ok {
		ch = make(chan []byte, q.size)
		q.queues[name] = ch
	}
	return ch, nil
}

// Publish buffers a copy of body. It never waits: a full queue returns ErrQueueFull.
func (q *MemoryQueue) Publish(ctx context.Context, queueName string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ch, err := q.queue(queueName)
	if err != nil {
		return err
	}
	msg := append([]byte(nil), body...)
	select {
	case ch <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Consume hands messages to handler until ctx is cancelled or the queue is closed. Failed
// messages are dropped.
func (q *MemoryQueue) Consume(ctx context.Context, queueName string, handler Handler) error {
	ch, err := q.queue(queueName)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-q.done:
			return nil
		case msg := <-ch:
			_ = handler(ctx, msg)
		}
	}
}

// Pending reports how many messages wait on a queue.
func (q *MemoryQueue) Pending(queueName string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues[queueName])
}

// Close stops consumers and rejects further publishes.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
	return nil
}
