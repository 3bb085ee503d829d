package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/config"
	"github.com/example/fooddelivery/internal/core"
	"github.com/example/fooddelivery/internal/middleware"
	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/internal/seed"
	"github.com/example/fooddelivery/pkg/cache"
	"github.com/example/fooddelivery/pkg/database"
	"github.com/example/fooddelivery/pkg/messagequeue"
)

func memoryConfig() *config.Config {
	return &config.Config{
		GinMode:                  "debug",
		StoreBackend:             config.StoreMemory,
		EncryptionKey:            base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{9}, 32)),
		AdminEmail:               "admin@fooddelivery.com",
		CatalogSource:            "fallback",
		ProductsCollection:       "products",
		LegacyProductsCollection: "foodItems",
		OrderStatusPolicy:        "strict",
		OrderEventsQueue:         "order-events",
	}
}

func TestNewMemoryBackend(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	assert.IsType(t, &database.MemoryStore{}, a.Store)
	assert.IsType(t, &cache.MemoryCache{}, a.Cache)
	assert.IsType(t, &messagequeue.MemoryQueue{}, a.Queue)
	assert.IsType(t, middleware.DevTokenVerifier{}, a.Verifier)
	assert.NotNil(t, a.AuthMiddleware())
	assert.Equal(t, "foodItems", a.Collections.Legacy)
}

func TestNewWiresServices(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, created, err := a.Services.Users.EnsureAdmin(ctx, "admin@fooddelivery.com", "Admin")
	require.NoError(t, err)
	assert.True(t, created)
	admin, err := a.Services.Users.Resolve(ctx, "admin-uid", "admin@fooddelivery.com", "")
	require.NoError(t, err)

	price := 9.5
	product, err := a.Services.Catalog.AddProduct(ctx, admin, models.CreateProductRequest{
		Name:     "Veggie Wrap",
		Price:    &price,
		Category: "Wraps",
	})
	require.NoError(t, err)

	_, err = a.Services.Catalog.UploadProductImage(ctx, admin, product.ID, "wrap.png",
		[]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89"))
	require.NoError(t, err)

	// The strict policy is in force.
	customer, err := a.Services.Users.Resolve(ctx, "ana-uid", "ana@example.com", "")
	require.NoError(t, err)
	_, err = a.Services.Users.Register(ctx, customer, models.RegisterRequest{Name: "Ana", Address: "Rua A, 10"})
	require.NoError(t, err)
	order, err := a.Services.Orders.CreateOrder(ctx, customer, models.CreateOrderRequest{
		Items: []models.OrderItem{{ProductID: product.ID, Name: "Veggie Wrap", Price: price, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = a.Services.Orders.UpdateOrderStatus(ctx, admin, order.ID, models.OrderStatusDelivered)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.GinMode = "release"
	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)

	cfg = memoryConfig()
	cfg.OrderStatusPolicy = "chaotic"
	_, err = New(context.Background(), cfg, nil)
	require.Error(t, err)

	cfg = memoryConfig()
	cfg.StoreBackend = "sqlite"
	_, err = New(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestSeederAndNotifier(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	a, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	report, err := a.Seeder().Run(ctx, &seed.File{
		FoodItems: []seed.FoodItem{{ID: "1", Name: "Fries", Price: 3.99, Category: "Sides"}},
		Admin:     seed.Admin{Email: cfg.AdminEmail, Name: "Admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.FoodItemsWritten)
	assert.True(t, report.AdminCreated)
	assert.True(t, report.Initialization.FoodItems)

	_, err = a.Notifier()
	assert.Error(t, err, "SMTP host is unset")

	cfg.SMTPHost = "localhost"
	cfg.SMTPPort = 2525
	cfg.MailFrom = "orders@fooddelivery.com"
	notifier, err := a.Notifier()
	require.NoError(t, err)
	assert.NotNil(t, notifier)
}

func TestOrderEventsDroppedWithoutConsumer(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	a, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.False(t, a.HasEventConsumer())

	customer, err := a.Services.Users.Resolve(ctx, "ana-uid", "ana@example.com", "")
	require.NoError(t, err)
	_, err = a.Services.Users.Register(ctx, customer, models.RegisterRequest{Name: "Ana", Address: "Rua A, 10"})
	require.NoError(t, err)

	for i := 0; i < memoryQueueSize+5; i++ {
		_, err := a.Services.Orders.CreateOrder(ctx, customer, models.CreateOrderRequest{
			Items: []models.OrderItem{{Name: "Fries", Price: 3.99, Quantity: 1}},
		})
		require.NoError(t, err)
	}
	queue := a.Queue.(*messagequeue.MemoryQueue)
	assert.Equal(t, 0, queue.Pending(cfg.OrderEventsQueue))

	withSMTP := memoryConfig()
	withSMTP.SMTPHost = "localhost"
	b, err := New(ctx, withSMTP, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	assert.True(t, b.HasEventConsumer())
}
