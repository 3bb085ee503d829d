package db

import (
	"context"

	"github.com/example/fooddelivery/internal/models"
)

// ProductStore defines the catalog operations used by the service layer.
type ProductStore interface {
	Add(ctx context.Context, product *models.Product) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
	Get(ctx context.Context, productID string) (*models.Product, error)
	Update(ctx context.Context, productID string, patch models.ProductPatch) error
	Delete(ctx context.Context, productID string) error
	MigrateLegacy(ctx context.Context, opts MigrationOptions) (MigrationResult, error)
}

// OrderStore defines the order operations used by the service layer.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	List(ctx context.Context) ([]*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Order, error)
	Get(ctx context.Context, orderID string) (*models.Order, error)
	Update(ctx context.Context, orderID string, patch models.OrderPatch) error
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error
	Delete(ctx context.Context, orderID string) error
}

// UserStore defines the user profile operations used by the service layer.
type UserStore interface {
	Add(ctx context.Context, user *models.User) (*models.User, error)
	Get(ctx context.Context, userID string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, userID string, patch models.UserPatch) error
	Delete(ctx context.Context, userID string) error
	// GetByEmail returns nil and no error when no profile has the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
}

// RestaurantStore defines the restaurant operations used by the service layer.
type RestaurantStore interface {
	Add(ctx context.Context, restaurant *models.Restaurant) (*models.Restaurant, error)
	AddWithID(ctx context.Context, restaurantID string, restaurant *models.Restaurant) (*models.Restaurant, error)
	List(ctx context.Context) ([]*models.Restaurant, error)
	Get(ctx context.Context, restaurantID string) (*models.Restaurant, error)
	Update(ctx context.Context, restaurantID string, patch models.RestaurantPatch) error
	Delete(ctx context.Context, restaurantID string) error
}

// AuditStore defines the audit log storage operations.
type AuditStore interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error)
}
