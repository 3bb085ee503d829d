package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/core"
	"github.com/example/fooddelivery/internal/middleware"
	"github.com/example/fooddelivery/internal/models"
)

// ProductHandler handles the catalog endpoints.
type ProductHandler struct {
	catalog core.CatalogService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(catalog core.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: products, Count: len(products)})
}

// GetProduct handles GET /products/:productId
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("productId"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	product, err := h.catalog.AddProduct(c.Request.Context(), middleware.SessionFromContext(c), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PATCH /products/:productId
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	product, err := h.catalog.UpdateProduct(c.Request.Context(), middleware.SessionFromContext(c), c.Param("productId"), patch)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:productId
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), middleware.SessionFromContext(c), c.Param("productId")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage handles POST /products/:productId/image (multipart, field "image").
func (h *ProductHandler) UploadImage(c *gin.Context) {
	fileName, data, err := readImage(c)
	if err != nil {
		badRequest(c, "An image file is required", err)
		return
	}
	product, err := h.catalog.UploadProductImage(c.Request.Context(), middleware.SessionFromContext(c), c.Param("productId"), fileName, data)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// MigrateCatalog handles POST /admin/catalog/migrate
func (h *ProductHandler) MigrateCatalog(c *gin.Context) {
	var req core.MigrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	result, err := h.catalog.MigrateLegacy(c.Request.Context(), middleware.SessionFromContext(c), req)
	if err != nil {
		if result.Migrated > 0 {
			h.logger.Warn("Catalog migration stopped part way", zap.Int("migrated", result.Migrated))
		}
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
