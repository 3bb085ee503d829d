package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/core"
	"github.com/example/fooddelivery/internal/crypto"
	"github.com/example/fooddelivery/internal/db"
	"github.com/example/fooddelivery/internal/middleware"
	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/pkg/database"
	"github.com/example/fooddelivery/pkg/messagequeue"
	"github.com/example/fooddelivery/pkg/storage"
)

const (
	adminToken    = "Bearer admin-uid:admin@fooddelivery.com"
	customerToken = "Bearer ana-uid:ana@example.com"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type testServer struct {
	router *gin.Engine
	store  *database.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	store := database.NewMemoryStore()
	queue := messagequeue.NewMemoryQueue(32)
	t.Cleanup(func() { _ = queue.Close() })

	cipher, err := crypto.NewCipher(bytes.Repeat([]byte{3}, crypto.KeySize))
	require.NoError(t, err)
	images := storage.NewImageService(storage.NewMemoryStore("demo.appspot.com"))

	productRepo := db.NewProductRepository(store, nil, logger)
	orderRepo := db.NewOrderRepository(store, logger)
	userRepo := db.NewUserRepository(store, logger)

	audit := core.NewAuditService(db.NewAuditRepository(store, logger), logger)
	users := core.NewUserService(userRepo, cipher, "admin@fooddelivery.com", audit, logger)
	services := Services{
		Catalog:     core.NewCatalogService(productRepo, images, nil, audit, logger),
		Orders:      core.NewOrderService(orderRepo, nil, core.NewQueuePublisher(queue, "order-events"), audit, logger),
		Users:       users,
		Restaurants: core.NewRestaurantService(db.NewRestaurantRepository(store, logger), images, audit, logger),
		Dashboard:   core.NewDashboardService(productRepo, orderRepo, userRepo),
		Audit:       audit,
	}
	_, _, err = users.EnsureAdmin(context.Background(), "admin@fooddelivery.com", "Admin")
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(logger))
	SetupRoutes(router, middleware.NewAuthMiddleware(middleware.DevTokenVerifier{}, users, logger), services, logger)
	return &testServer{router: router, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	w := srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())
}

func TestCustomerOrderJourney(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	_, err := srv.store.Create(ctx, db.LegacyProductsCollection, map[string]interface{}{
		"name": "Classic Cheeseburger", "price": 12.99, "category": "Burgers", "available": true,
	})
	require.NoError(t, err)

	w := srv.do(t, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []models.Product `json:"items"`
		Count int              `json:"count"`
	}
	decode(t, w, &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "foodItems", list.Items[0].Source)

	w = srv.do(t, http.MethodPost, "/api/v1/orders", customerToken, models.CreateOrderRequest{
		Items: []models.OrderItem{{Name: "Classic Cheeseburger", Quantity: 1, Price: 12.99}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code, "ordering requires a registered profile")

	w = srv.do(t, http.MethodPost, "/api/v1/users/register", customerToken, models.RegisterRequest{Name: "Ana", CardNumber: "4111111111111111"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user models.User
	decode(t, w, &user)
	assert.Equal(t, "************1111", user.CardNumber)

	w = srv.do(t, http.MethodPost, "/api/v1/users/register", customerToken, models.RegisterRequest{Name: "Ana"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/orders", customerToken, models.CreateOrderRequest{
		Items: []models.OrderItem{{Name: "Classic Cheeseburger", Quantity: 2, Price: 12.99}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order models.Order
	decode(t, w, &order)
	assert.InDelta(t, 25.98, order.Total, 1e-9)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	w = srv.do(t, http.MethodGet, "/api/v1/orders/mine", customerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), order.ID)

	w = srv.do(t, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", customerToken, gin.H{"status": "delivered"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", adminToken, gin.H{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", adminToken, gin.H{"status": "delivered"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.do(t, http.MethodGet, "/api/v1/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats core.DashboardStats
	decode(t, w, &stats)
	assert.InDelta(t, 25.98, stats.TotalRevenue, 1e-9)
	assert.Equal(t, 1, stats.CompletedOrders)
}

func TestAdminProductEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/products", customerToken, gin.H{"name": "Cola", "price": 2.5, "category": "Beverages"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/products", adminToken, gin.H{"name": "Cola", "category": "Beverages"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "price is required")

	w = srv.do(t, http.MethodPost, "/api/v1/products", adminToken, gin.H{"name": "Cola", "price": -1, "category": "Beverages"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/products", adminToken, gin.H{"name": "Cola", "price": 2.5, "category": "Beverages"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product models.Product
	decode(t, w, &product)
	assert.True(t, product.Available)

	w = srv.do(t, http.MethodPatch, "/api/v1/products/"+product.ID, adminToken, gin.H{"price": 3})
	require.Equal(t, http.StatusOK, w.Code)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", "cola.png")
	require.NoError(t, err)
	_, err = part.Write(pngHeader)
	require.NoError(t, err)
	require.NoError(t, form.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+product.ID+"/image", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", adminToken)
	upload := httptest.NewRecorder()
	srv.router.ServeHTTP(upload, req)
	require.Equal(t, http.StatusOK, upload.Code, upload.Body.String())
	assert.Contains(t, upload.Body.String(), "food_item_"+product.ID)

	w = srv.do(t, http.MethodDelete, "/api/v1/products/"+product.ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/products/"+product.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/admin/audit-logs?limit=10", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.AuditProductImage)

	w = srv.do(t, http.MethodGet, "/api/v1/admin/audit-logs?limit=ten", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogMigrationEndpoint(t *testing.T) {
	srv := newTestServer(t)
	_, err := srv.store.Create(context.Background(), db.LegacyProductsCollection, map[string]interface{}{
		"name": "Cola", "price": 2.5, "category": "Beverages",
	})
	require.NoError(t, err)

	w := srv.do(t, http.MethodPost, "/api/v1/admin/catalog/migrate", adminToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/admin/catalog/migrate", adminToken, gin.H{"confirm": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"migrated":1,"skipped":0}`, w.Body.String())

	w = srv.do(t, http.MethodPost, "/api/v1/admin/catalog/migrate", adminToken, gin.H{"confirm": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"migrated":0,"skipped":1}`, w.Body.String())
}

func TestRestaurantEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/restaurants", adminToken, gin.H{"name": "Burger Palace", "rating": 4.5, "isOpen": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var restaurant models.Restaurant
	decode(t, w, &restaurant)

	w = srv.do(t, http.MethodGet, "/api/v1/restaurants", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Burger Palace")

	w = srv.do(t, http.MethodPatch, "/api/v1/restaurants/missing", adminToken, gin.H{"isOpen": false})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodDelete, "/api/v1/restaurants/"+restaurant.ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestProfileEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/users/me", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/users/register", "Bearer x-uid:Admin@FoodDelivery.com", models.RegisterRequest{Name: "Eve"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/users/register", customerToken, models.RegisterRequest{Name: "Ana"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = srv.do(t, http.MethodPatch, "/api/v1/users/me", customerToken, gin.H{"address": "Rua B, 20"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rua B, 20")

	w = srv.do(t, http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
}
