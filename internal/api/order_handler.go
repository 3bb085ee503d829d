package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/core"
	"github.com/example/fooddelivery/internal/middleware"
	"github.com/example/fooddelivery/internal/models"
)

// OrderHandler handles the order endpoints for customers and admins.
type OrderHandler struct {
	orders core.OrderService
	logger *zap.Logger
}

func NewOrderHandler(orders core.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	order, err := h.orders.CreateOrder(c.Request.Context(), middleware.SessionFromContext(c), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListMyOrders handles GET /orders/mine
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	orders, err := h.orders.ListMyOrders(c.Request.Context(), middleware.SessionFromContext(c))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: orders, Count: len(orders)})
}

// ListOrders handles GET /admin/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), middleware.SessionFromContext(c))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: orders, Count: len(orders)})
}

// UpdateOrderStatus handles PATCH /admin/orders/:orderId/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), middleware.SessionFromContext(c), c.Param("orderId"), req.Status)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /admin/orders/:orderId
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.orders.DeleteOrder(c.Request.Context(), middleware.SessionFromContext(c), c.Param("orderId")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
