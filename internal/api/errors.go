package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/core"
	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/pkg/database"
	"github.com/example/fooddelivery/pkg/storage"
)

// mapErrorToStatus writes the response for a service error. Unknown errors are logged and
// answered with a generic 500.
func mapErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrProductNotFound),
		errors.Is(err, core.ErrOrderNotFound),
		errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrRestaurantNotFound),
		errors.Is(err, database.ErrNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Not found", Details: err.Error()}
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, storage.ErrUnsupportedImage),
		errors.Is(err, core.ErrMigrationNotConfirmed):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid request", Details: err.Error()}
	case errors.Is(err, core.ErrDuplicateEmail),
		errors.Is(err, core.ErrReservedEmail),
		errors.Is(err, database.ErrAlreadyExists):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: err.Error()}
	case errors.Is(err, core.ErrMigrationInProgress):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrMigrationInProgress.Error()}
	case errors.Is(err, core.ErrUnauthenticated):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: core.ErrUnauthenticated.Error()}
	case errors.Is(err, core.ErrForbidden):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrForbidden.Error()}
	case errors.Is(err, core.ErrProfileRequired):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrProfileRequired.Error()}
	case errors.Is(err, core.ErrInvalidTransition):
		statusCode = http.StatusUnprocessableEntity
		errResponse = ErrorResponse{Error: core.ErrInvalidTransition.Error(), Details: err.Error()}
	case errors.Is(err, core.ErrImagesDisabled):
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: core.ErrImagesDisabled.Error()}
	default:
		logger.Error("Unhandled service error",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected error occurred"}
	}
	c.JSON(statusCode, errResponse)
}

func badRequest(c *gin.Context, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
