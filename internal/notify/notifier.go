// Package notify emails customers when their orders are placed or change status.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/core"
	"github.com/example/fooddelivery/internal/db"
	"github.com/example/fooddelivery/pkg/database"
	"github.com/example/fooddelivery/pkg/mailer"
	"github.com/example/fooddelivery/pkg/messagequeue"
)

var statusLines = map[string]string{
	"pending":          "We received your order and will confirm it shortly.",
	"confirmed":        "The restaurant confirmed your order.",
	"preparing":        "Your food is being prepared.",
	"out for delivery": "Your order is on its way.",
	"delivered":        "Your order was delivered. Enjoy your meal!",
	"completed":        "Your order is complete. Thanks for ordering with us!",
	"cancelled":        "Your order was cancelled.",
}

// Notifier turns order events into customer emails.
type Notifier struct {
	users  db.UserStore
	sender mailer.Sender
	logger *zap.Logger
}

func NewNotifier(users db.UserStore, sender mailer.Sender, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{users: users, sender: sender, logger: logger}
}

// Run consumes order events from queueName until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context, queue messagequeue.MessageQueue, queueName string) error {
	n.logger.Info("Order notifier listening", zap.String("queue", queueName))
	return queue.Consume(ctx, queueName, n.Handle)
}

// Handle processes one event. Malformed events and customers that cannot be found are
// logged and acknowledged; only a failed send is returned as an error.
func (n *Notifier) Handle(ctx context.Context, body []byte) error {
	event, err := core.DecodeOrderEvent(body)
	if err != nil {
		n.logger.Warn("Dropping malformed order event", zap.Error(err))
		return nil
	}
	if event.Type == core.EventOrderStatusChanged && event.Status == event.PreviousStatus {
		return nil
	}

	to := event.UserEmail
	name := ""
	if event.UserID != "" {
		user, err := n.users.Get(ctx, event.UserID)
		switch {
		case err == nil:
			name = user.Name
			if to == "" {
				to = user.Email
			}
		case errors.Is(err, database.ErrNotFound):
			n.logger.Info("Order owner no longer exists", zap.String("userId", event.UserID))
		default:
			return fmt.Errorf("load order owner: %w", err)
		}
	}
	if to == "" {
		n.logger.Warn("No recipient for order event", zap.String("orderId", event.OrderID), zap.String("type", event.Type))
		return nil
	}

	msg := buildMessage(event, to, name)
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Error("Failed to send order email", zap.String("orderId", event.OrderID), zap.Error(err))
		return err
	}
	n.logger.Info("Order email sent", zap.String("orderId", event.OrderID), zap.String("type", event.Type))
	return nil
}

func buildMessage(event core.OrderEvent, to, name string) mailer.Message {
	ref := shortID(event.OrderID)
	subject := fmt.Sprintf("Order #%s: %s", ref, event.Status)
	if event.Type == core.EventOrderCreated {
		subject = fmt.Sprintf("Order #%s received", ref)
	}
	greeting := "Hi,"
	if name != "" {
		greeting = fmt.Sprintf("Hi %s,", name)
	}
	line, ok := statusLines[string(event.Status)]
	if !ok {
		line = fmt.Sprintf("Your order status is now %q.", event.Status)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<p>%s</p>\n", greeting)
	fmt.Fprintf(&b, "<p>%s</p>\n", line)
	fmt.Fprintf(&b, "<p>Order #%s, total R %.2f.</p>\n", ref, event.Total)
	return mailer.Message{To: to, Subject: subject, Body: b.String()}
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
