package core

import (
	"context"

	"github.com/example/fooddelivery/internal/db"
	"github.com/example/fooddelivery/internal/models"
)

// CatalogService defines the product catalog operations.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	AddProduct(ctx context.Context, s *Session, req models.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, s *Session, productID string, patch models.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, s *Session, productID string) error
	UploadProductImage(ctx context.Context, s *Session, productID, fileName string, data []byte) (*models.Product, error)
	// MigrateLegacy copies the legacy collection into the current one. Only one migration
	// runs at a time across all instances.
	MigrateLegacy(ctx context.Context, s *Session, req MigrationRequest) (db.MigrationResult, error)
}

// OrderService defines the order operations.
type OrderService interface {
	CreateOrder(ctx context.Context, s *Session, req models.CreateOrderRequest) (*models.Order, error)
	ListMyOrders(ctx context.Context, s *Session) ([]*models.Order, error)
	ListOrders(ctx context.Context, s *Session) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, s *Session, orderID string, status models.OrderStatus) (*models.Order, error)
	DeleteOrder(ctx context.Context, s *Session, orderID string) error
}

// UserService defines the user profile operations.
type UserService interface {
	// Resolve builds the session for a verified identity, attaching the profile registered
	// under its email if there is one.
	Resolve(ctx context.Context, uid, email, displayName string) (*Session, error)
	Register(ctx context.Context, s *Session, req models.RegisterRequest) (*models.User, error)
	GetProfile(ctx context.Context, s *Session) (*models.User, error)
	UpdateProfile(ctx context.Context, s *Session, req models.UpdateProfileRequest) (*models.User, error)
	ListUsers(ctx context.Context, s *Session) ([]*models.User, error)
	UpdateUser(ctx context.Context, s *Session, userID string, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, s *Session, userID string) error
	// EnsureAdmin creates the admin profile unless an admin already exists. It reports
	// whether a profile was created.
	EnsureAdmin(ctx context.Context, email, name string) (*models.User, bool, error)
}

// RestaurantService defines the restaurant operations.
type RestaurantService interface {
	ListRestaurants(ctx context.Context) ([]*models.Restaurant, error)
	GetRestaurant(ctx context.Context, restaurantID string) (*models.Restaurant, error)
	AddRestaurant(ctx context.Context, s *Session, restaurant *models.Restaurant) (*models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, s *Session, restaurantID string, patch models.RestaurantPatch) (*models.Restaurant, error)
	DeleteRestaurant(ctx context.Context, s *Session, restaurantID string) error
	UploadRestaurantImage(ctx context.Context, s *Session, restaurantID, fileName string, data []byte) (*models.Restaurant, error)
}

// DashboardService computes the admin overview.
type DashboardService interface {
	Stats(ctx context.Context, s *Session) (*DashboardStats, error)
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
	ListAuditLogs(ctx context.Context, s *Session, limit int) ([]*models.AuditLog, error)
}
