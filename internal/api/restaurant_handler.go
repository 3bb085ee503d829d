package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/core"
	"github.com/example/fooddelivery/internal/middleware"
	"github.com/example/fooddelivery/internal/models"
)

// RestaurantHandler handles the restaurant endpoints.
type RestaurantHandler struct {
	restaurants core.RestaurantService
	logger      *zap.Logger
}

func NewRestaurantHandler(restaurants core.RestaurantService, logger *zap.Logger) *RestaurantHandler {
	return &RestaurantHandler{restaurants: restaurants, logger: logger}
}

func (h *RestaurantHandler) ListRestaurants(c *gin.Context) {
	restaurants, err := h.restaurants.ListRestaurants(c.Request.Context())
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: restaurants, Count: len(restaurants)})
}

func (h *RestaurantHandler) GetRestaurant(c *gin.Context) {
	restaurant, err := h.restaurants.GetRestaurant(c.Request.Context(), c.Param("restaurantId"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

func (h *RestaurantHandler) CreateRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := c.ShouldBindJSON(&restaurant); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	created, err := h.restaurants.AddRestaurant(c.Request.Context(), middleware.SessionFromContext(c), &restaurant)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *RestaurantHandler) UpdateRestaurant(c *gin.Context) {
	var patch models.RestaurantPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	updated, err := h.restaurants.UpdateRestaurant(c.Request.Context(), middleware.SessionFromContext(c), c.Param("restaurantId"), patch)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *RestaurantHandler) DeleteRestaurant(c *gin.Context) {
	if err := h.restaurants.DeleteRestaurant(c.Request.Context(), middleware.SessionFromContext(c), c.Param("restaurantId")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RestaurantHandler) UploadImage(c *gin.Context) {
	fileName, data, err := readImage(c)
	if err != nil {
		badRequest(c, "An image file is required", err)
		return
	}
	updated, err := h.restaurants.UploadRestaurantImage(c.Request.Context(), middleware.SessionFromContext(c), c.Param("restaurantId"), fileName, data)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
