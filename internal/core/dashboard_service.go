package core

import (
	"context"

	"github.com/example/fooddelivery/internal/db"
	"github.com/example/fooddelivery/internal/models"
)

// DashboardStats is the admin overview. Revenue only counts delivered and completed
// orders. PendingOrders counts pending and confirmed orders, CompletedOrders counts
// delivered and completed ones.
type DashboardStats struct {
	TotalProducts   int                        `json:"totalProducts"`
	TotalOrders     int                        `json:"totalOrders"`
	TotalUsers      int                        `json:"totalUsers"`
	TotalRevenue    float64                    `json:"totalRevenue"`
	PendingOrders   int                        `json:"pendingOrders"`
	CompletedOrders int                        `json:"completedOrders"`
	CancelledOrders int                        `json:"cancelledOrders"`
	OrdersByStatus  map[models.OrderStatus]int `json:"ordersByStatus"`
}

type dashboardService struct {
	products db.ProductStore
	orders   db.OrderStore
	users    db.UserStore
}

func NewDashboardService(products db.ProductStore, orders db.OrderStore, users db.UserStore) DashboardService {
	return &dashboardService{products: products, orders: orders, users: users}
}

func (s *dashboardService) Stats(ctx context.Context, sess *Session) (*DashboardStats, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := summarizeOrders(orders)
	stats.TotalProducts = len(products)
	stats.TotalUsers = len(users)
	return stats, nil
}

func summarizeOrders(orders []*models.Order) *DashboardStats {
	stats := &DashboardStats{
		TotalOrders:    len(orders),
		OrdersByStatus: make(map[models.OrderStatus]int, len(models.OrderStatuses)),
	}
	for _, status := range models.OrderStatuses {
		stats.OrdersByStatus[status] = 0
	}
	for _, order := range orders {
		stats.OrdersByStatus[order.Status]++
		switch order.Status {
		case models.OrderStatusPending, models.OrderStatusConfirmed:
			stats.PendingOrders++
		case models.OrderStatusDelivered, models.OrderStatusCompleted:
			stats.CompletedOrders++
			stats.TotalRevenue += order.Total
		case models.OrderStatusCancelled:
			stats.CancelledOrders++
		}
	}
	return stats
}
