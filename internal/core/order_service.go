package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/db"
	"github.com/example/fooddelivery/internal/models"
)

type orderService struct {
	orders    db.OrderStore
	policy    StatusPolicy
	publisher EventPublisher
	audit     AuditService
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates an OrderService. A nil policy is permissive and a nil publisher
// drops events.
func NewOrderService(orders db.OrderStore, policy StatusPolicy, publisher EventPublisher, audit AuditService, logger *zap.Logger) OrderService {
	if policy == nil {
		policy = PermissivePolicy{}
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &orderService{
		orders:    orders,
		policy:    policy,
		publisher: publisher,
		audit:     audit,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder places an order owned by the caller. The total is taken as supplied; it is
// computed from the items only when the request omits it.
func (s *orderService) CreateOrder(ctx context.Context, sess *Session, req models.CreateOrderRequest) (*models.Order, error) {
	if err := requireProfile(sess); err != nil {
		return nil, err
	}
	total := models.ItemsTotal(req.Items)
	if req.Total != nil {
		total = *req.Total
	}
	deliveryAddress := req.DeliveryAddress
	if deliveryAddress == "" {
		deliveryAddress = sess.User.Address
	}

	order, err := s.orders.Create(ctx, &models.Order{
		UserID:          sess.User.ID,
		Items:           req.Items,
		Total:           total,
		Status:          models.OrderStatusPending,
		DeliveryAddress: deliveryAddress,
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, s.logger, OrderEvent{
		Type:       EventOrderCreated,
		OrderID:    order.ID,
		UserID:     order.UserID,
		UserEmail:  sess.User.Email,
		Status:     order.Status,
		Total:      order.Total,
		OccurredAt: s.now(),
	})
	return order, nil
}

func (s *orderService) ListMyOrders(ctx context.Context, sess *Session) ([]*models.Order, error) {
	if err := requireProfile(sess); err != nil {
		return nil, err
	}
	return s.orders.ListByUser(ctx, sess.User.ID)
}

func (s *orderService) ListOrders(ctx context.Context, sess *Session) ([]*models.Order, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.orders.List(ctx)
}

// UpdateOrderStatus moves an order to status if the configured policy allows it.
func (s *orderService) UpdateOrderStatus(ctx context.Context, sess *Session, orderID string, status models.OrderStatus) (*models.Order, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", models.ErrValidation, status)
	}
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound, orderID)
	}
	previous := order.Status
	if err := s.policy.Allow(previous, status); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, notFound(err, ErrOrderNotFound, orderID)
	}

	record(ctx, s.audit, s.logger, sess, models.AuditOrderStatus, "ORDER", orderID,
		map[string]interface{}{"from": string(previous), "to": string(status)})
	publish(ctx, s.publisher, s.logger, OrderEvent{
		Type:           EventOrderStatusChanged,
		OrderID:        orderID,
		UserID:         order.UserID,
		Status:         status,
		PreviousStatus: previous,
		Total:          order.Total,
		OccurredAt:     s.now(),
	})

	updated, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound, orderID)
	}
	return updated, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, sess *Session, orderID string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		return notFound(err, ErrOrderNotFound, orderID)
	}
	record(ctx, s.audit, s.logger, sess, models.AuditOrderDelete, "ORDER", orderID, nil)
	return nil
}
