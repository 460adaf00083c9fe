package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/domain/models"
)

// respond writes a success envelope merged with body.
func respond(c *gin.Context, status int, body gin.H) {
	out := gin.H{"success": true}
	for k, v := range body {
		out[k] = v
	}
	c.JSON(status, out)
}

// fail writes an error envelope whose status is derived from the error kind.
// Infrastructure errors are logged and hidden behind a generic message.
func fail(c *gin.Context, logger *zap.Logger, err error) {
	kind := models.KindOf(err)
	status := statusFor(kind)
	message := err.Error()
	if kind == models.KindInternal {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		message = "An unexpected error occurred"
	}
	c.JSON(status, gin.H{"success": false, "error": message, "code": kind})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message, "code": models.KindValidation})
}

func statusFor(kind models.Kind) int {
	switch kind {
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindInvalidProduct:
		return http.StatusUnprocessableEntity
	case models.KindInsufficientInventory, models.KindConflict:
		return http.StatusConflict
	case models.KindForbidden:
		return http.StatusForbidden
	case models.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
