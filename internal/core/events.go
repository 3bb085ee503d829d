package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/pkg/messagequeue"
)

// Order event types.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published whenever an order is placed or changes status.
type OrderEvent struct {
	Type           string             `json:"type"`
	OrderID        string             `json:"orderId"`
	UserID         string             `json:"userId"`
	UserEmail      string             `json:"userEmail,omitempty"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previousStatus,omitempty"`
	Total          float64            `json:"total"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

// EventPublisher sends order events to interested consumers.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

type queuePublisher struct {
	queue     messagequeue.MessageQueue
	queueName string
}

// NewQueuePublisher publishes order events as JSON messages on queueName.
func NewQueuePublisher(queue messagequeue.MessageQueue, queueName string) EventPublisher {
	return &queuePublisher{queue: queue, queueName: queueName}
}

func (p *queuePublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	return p.queue.Publish(ctx, p.queueName, body)
}

// DecodeOrderEvent parses a message body produced by NewQueuePublisher.
func DecodeOrderEvent(body []byte) (OrderEvent, error) {
	var event OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return OrderEvent{}, fmt.Errorf("decode order event: %w", err)
	}
	if event.Type == "" || event.OrderID == "" {
		return OrderEvent{}, fmt.Errorf("decode order event: missing type or order id")
	}
	return event, nil
}

// publishTimeout bounds how long a request waits on the event broker.
const publishTimeout = 2 * time.Second

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event. It is used when nothing
// consumes order events.
func NewNoopPublisher() EventPublisher { return noopPublisher{} }

func (noopPublisher) PublishOrderEvent(context.Context, OrderEvent) error { return nil }

func publish(ctx context.Context, publisher EventPublisher, logger *zap.Logger, event OrderEvent) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := publisher.PublishOrderEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish order event",
			zap.String("type", event.Type),
			zap.String("orderId", event.OrderID),
			zap.Error(err))
	}
}
