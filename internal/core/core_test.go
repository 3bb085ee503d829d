package core

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/crypto"
	"github.com/example/fooddelivery/internal/db"
	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/pkg/cache"
	"github.com/example/fooddelivery/pkg/database"
	"github.com/example/fooddelivery/pkg/messagequeue"
	"github.com/example/fooddelivery/pkg/storage"
)

const (
	testAdminEmail = "admin@fooddelivery.com"
	testQueue      = "order-events"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type testEnv struct {
	store       *database.MemoryStore
	objects     *storage.MemoryStore
	locks       *cache.MemoryCache
	queue       *messagequeue.MemoryQueue
	productRepo *db.ProductRepository
	orderRepo   *db.OrderRepository
	userRepo    *db.UserRepository
	auditRepo   *db.AuditRepository

	catalog     CatalogService
	orders      OrderService
	users       UserService
	restaurants RestaurantService
	dashboard   DashboardService
	audit       AuditService
}

func newTestEnv(t *testing.T, policy StatusPolicy) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	env := &testEnv{
		store:   database.NewMemoryStore(),
		objects: storage.NewMemoryStore("demo.appspot.com"),
		locks:   cache.NewMemoryCache(),
		queue:   messagequeue.NewMemoryQueue(16),
	}
	t.Cleanup(func() { _ = env.queue.Close() })

	env.productRepo = db.NewProductRepository(env.store, nil, logger)
	env.orderRepo = db.NewOrderRepository(env.store, logger)
	env.userRepo = db.NewUserRepository(env.store, logger)
	env.auditRepo = db.NewAuditRepository(env.store, logger)
	restaurantRepo := db.NewRestaurantRepository(env.store, logger)

	cipher, err := crypto.NewCipher(bytes.Repeat([]byte{7}, crypto.KeySize))
	require.NoError(t, err)
	images := storage.NewImageService(env.objects)

	env.audit = NewAuditService(env.auditRepo, logger)
	env.catalog = NewCatalogService(env.productRepo, images, env.locks, env.audit, logger)
	env.orders = NewOrderService(env.orderRepo, policy, NewQueuePublisher(env.queue, testQueue), env.audit, logger)
	env.users = NewUserService(env.userRepo, cipher, testAdminEmail, env.audit, logger)
	env.restaurants = NewRestaurantService(restaurantRepo, images, env.audit, logger)
	env.dashboard = NewDashboardService(env.productRepo, env.orderRepo, env.userRepo)
	return env
}

// customer registers a profile for email and returns the resolved session.
func (e *testEnv) customer(t *testing.T, uid, email string) *Session {
	t.Helper()
	ctx := context.Background()
	sess, err := e.users.Resolve(ctx, uid, email, "")
	require.NoError(t, err)
	_, err = e.users.Register(ctx, sess, models.RegisterRequest{Name: "Ana", Address: "Rua A, 10"})
	require.NoError(t, err)
	return sess
}

func (e *testEnv) admin(t *testing.T) *Session {
	t.Helper()
	ctx := context.Background()
	_, _, err := e.users.EnsureAdmin(ctx, testAdminEmail, "Admin")
	require.NoError(t, err)
	sess, err := e.users.Resolve(ctx, "admin-uid", testAdminEmail, "")
	require.NoError(t, err)
	require.True(t, sess.IsAdmin())
	return sess
}

func (e *testEnv) seedLegacy(t *testing.T, name string, price float64, category string) string {
	t.Helper()
	id, err := e.store.Create(context.Background(), db.LegacyProductsCollection, map[string]interface{}{
		"name":      name,
		"price":     price,
		"category":  category,
		"available": true,
	})
	require.NoError(t, err)
	return id
}
