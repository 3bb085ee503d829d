package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/core"
	"github.com/example/fooddelivery/internal/middleware"
)

// Services bundles the service layer the routes dispatch to.
type Services struct {
	Catalog     core.CatalogService
	Orders      core.OrderService
	Users       core.UserService
	Restaurants core.RestaurantService
	Dashboard   core.DashboardService
	Audit       core.AuditService
}

// SetupRoutes registers every route. Global middleware (logging, recovery, CORS) is
// expected to be installed on router already.
func SetupRoutes(router *gin.Engine, authMW *middleware.AuthMiddleware, services Services, logger *zap.Logger) {
	productHandler := NewProductHandler(services.Catalog, logger)
	restaurantHandler := NewRestaurantHandler(services.Restaurants, logger)
	orderHandler := NewOrderHandler(services.Orders, logger)
	userHandler := NewUserHandler(services.Users, logger)
	adminHandler := NewAdminHandler(services.Dashboard, services.Audit, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	authed := authMW.VerifyToken()
	requireAdmin := middleware.RequireAdmin()
	adminOnly := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return []gin.HandlerFunc{authed, requireAdmin, handler}
	}

	apiV1 := router.Group("/api/v1")
	{
		products := apiV1.Group("/products")
		{
			products.GET("", productHandler.ListProducts)
			products.GET("/:productId", productHandler.GetProduct)
			products.POST("", adminOnly(productHandler.CreateProduct)...)
			products.PATCH("/:productId", adminOnly(productHandler.UpdateProduct)...)
			products.DELETE("/:productId", adminOnly(productHandler.DeleteProduct)...)
			products.POST("/:productId/image", adminOnly(productHandler.UploadImage)...)
		}

		restaurants := apiV1.Group("/restaurants")
		{
			restaurants.GET("", restaurantHandler.ListRestaurants)
			restaurants.GET("/:restaurantId", restaurantHandler.GetRestaurant)
			restaurants.POST("", adminOnly(restaurantHandler.CreateRestaurant)...)
			restaurants.PATCH("/:restaurantId", adminOnly(restaurantHandler.UpdateRestaurant)...)
			restaurants.DELETE("/:restaurantId", adminOnly(restaurantHandler.DeleteRestaurant)...)
			restaurants.POST("/:restaurantId/image", adminOnly(restaurantHandler.UploadImage)...)
		}

		users := apiV1.Group("/users", authed)
		{
			users.POST("/register", userHandler.Register)
			users.GET("/me", userHandler.GetCurrentUserProfile)
			users.PATCH("/me", userHandler.UpdateCurrentUserProfile)
		}

		orders := apiV1.Group("/orders", authed)
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("/mine", orderHandler.ListMyOrders)
		}

		adminGroup := apiV1.Group("/admin", authed, requireAdmin)
		{
			adminGroup.GET("/dashboard", adminHandler.Dashboard)
			adminGroup.GET("/audit-logs", adminHandler.AuditLogs)

			adminGroup.GET("/orders", orderHandler.ListOrders)
			adminGroup.PATCH("/orders/:orderId/status", orderHandler.UpdateOrderStatus)
			adminGroup.DELETE("/orders/:orderId", orderHandler.DeleteOrder)

			adminGroup.GET("/users", userHandler.ListUsers)
			adminGroup.PATCH("/users/:userId", userHandler.UpdateUser)
			adminGroup.DELETE("/users/:userId", userHandler.DeleteUser)

			adminGroup.POST("/catalog/migrate", productHandler.MigrateCatalog)
		}
	}
}
