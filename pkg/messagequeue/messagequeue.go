package messagequeue

import "context"

// Handler processes one message body. Returning an error rejects the message.
type Handler func(ctx context.Context, body []byte) error

// MessageQueue defines the interface for message queue services. Consume blocks until ctx
// is cancelled or the underlying connection closes.
type MessageQueue interface {
	Publish(ctx context.Context, queueName string, body []byte) error
	Consume(ctx context.Context, queueName string, handler Handler) error
	Close() error
}
