package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/core"
	"github.com/example/fooddelivery/internal/middleware"
	"github.com/example/fooddelivery/internal/models"
)

// UserHandler handles profile endpoints and admin user management.
type UserHandler struct {
	users  core.UserService
	logger *zap.Logger
}

func NewUserHandler(users core.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Register handles POST /users/register. Called by the client right after sign-up.
func (h *UserHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	user, err := h.users.Register(c.Request.Context(), middleware.SessionFromContext(c), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetCurrentUserProfile handles GET /users/me
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), middleware.SessionFromContext(c))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateCurrentUserProfile handles PATCH /users/me
func (h *UserHandler) UpdateCurrentUserProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), middleware.SessionFromContext(c), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context(), middleware.SessionFromContext(c))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: users, Count: len(users)})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var patch models.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	user, err := h.users.UpdateUser(c.Request.Context(), middleware.SessionFromContext(c), c.Param("userId"), patch)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), middleware.SessionFromContext(c), c.Param("userId")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
