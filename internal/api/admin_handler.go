package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/core"
	"github.com/example/fooddelivery/internal/middleware"
)

// AdminHandler serves the dashboard and the audit trail.
type AdminHandler struct {
	dashboard core.DashboardService
	audit     core.AuditService
	logger    *zap.Logger
}

func NewAdminHandler(dashboard core.DashboardService, audit core.AuditService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{dashboard: dashboard, audit: audit, logger: logger}
}

// Dashboard handles GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context(), middleware.SessionFromContext(c))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AuditLogs handles GET /admin/audit-logs?limit=N
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "limit must be a number", err)
			return
		}
		limit = n
	}
	logs, err := h.audit.ListAuditLogs(c.Request.Context(), middleware.SessionFromContext(c), limit)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: logs, Count: len(logs)})
}
