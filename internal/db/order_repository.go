package db

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/pkg/database"
)

// OrderRepository stores orders in the orders collection.
type OrderRepository struct {
	base
}

// NewOrderRepository creates an OrderRepository.
func NewOrderRepository(store database.DocumentStore, logger *zap.Logger) *OrderRepository {
	return &OrderRepository{base: newBase(store, logger)}
}

// Create stores a new order. Status defaults to pending; createdAt and updatedAt are stamped.
// The total is stored as given.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order == nil {
		return nil, fmt.Errorf("create order: %w: order is required", models.ErrValidation)
	}
	record := *order
	if record.Status == "" {
		record.Status = models.OrderStatusPending
	}
	if err := models.Validate(&record); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	now := r.now()
	record.CreatedAt = now
	record.UpdatedAt = now

	id, err := r.store.Create(ctx, OrdersCollection, record.Fields())
	if err != nil {
		r.logger.Error("Failed to create order", zap.String("userId", record.UserID), zap.Error(err))
		return nil, fmt.Errorf("create order: %w", err)
	}
	record.ID = id
	r.logger.Debug("Order created", zap.String("orderId", id), zap.String("userId", record.UserID))
	return &record, nil
}

// List returns every order, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]*models.Order, error) {
	docs, err := r.store.GetAll(ctx, OrdersCollection)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return decodeOrders(docs)
}

// ListByUser returns the orders placed by userID, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	docs, err := r.store.Query(ctx, OrdersCollection, "userId", userID)
	if err != nil {
		return nil, fmt.Errorf("list orders for user %q: %w", userID, err)
	}
	return decodeOrders(docs)
}

// Get reads one order.
func (r *OrderRepository) Get(ctx context.Context, orderID string) (*models.Order, error) {
	doc, err := r.store.Get(ctx, OrdersCollection, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %q: %w", orderID, err)
	}
	return decodeOrder(doc)
}

// Update applies a partial update and stamps updatedAt.
func (r *OrderRepository) Update(ctx context.Context, orderID string, patch models.OrderPatch) error {
	if err := models.Validate(patch); err != nil {
		return fmt.Errorf("update order %q: %w", orderID, err)
	}
	fields := patch.Fields()
	fields["updatedAt"] = r.now()
	if err := r.store.Update(ctx, OrdersCollection, orderID, fields); err != nil {
		return fmt.Errorf("update order %q: %w", orderID, err)
	}
	r.logger.Debug("Order updated", zap.String("orderId", orderID))
	return nil
}

// UpdateStatus sets the status and stamps updatedAt. Any known status is accepted; transition
// rules belong to the caller.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("update order %q: %w: unknown status %q", orderID, models.ErrValidation, status)
	}
	fields := map[string]interface{}{
		"status":    string(status),
		"updatedAt": r.now(),
	}
	if err := r.store.Update(ctx, OrdersCollection, orderID, fields); err != nil {
		return fmt.Errorf("update order %q status: %w", orderID, err)
	}
	r.logger.Debug("Order status updated", zap.String("orderId", orderID), zap.String("status", string(status)))
	return nil
}

// Delete removes an order.
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	if err := r.store.Delete(ctx, OrdersCollection, orderID); err != nil {
		return fmt.Errorf("delete order %q: %w", orderID, err)
	}
	return nil
}

func decodeOrder(doc database.Document) (*models.Order, error) {
	var order models.Order
	if err := database.Decode(doc, &order); err != nil {
		return nil, err
	}
	order.ID = doc.ID
	return &order, nil
}

func decodeOrders(docs []database.Document) ([]*models.Order, error) {
	orders := make([]*models.Order, 0, len(docs))
	for _, doc := range docs {
		order, err := decodeOrder(doc)
		if err != nil {
			return nil, fmt.Errorf("decode orders: %w", err)
		}
		orders = append(orders, order)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}
