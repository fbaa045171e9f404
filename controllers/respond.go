package controllers

import (
	"errors"
	"net/http"

	"bingo-groups-backend/apperrors"
	"bingo-groups-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

// respondError maps an engine error to its HTTP status with the stable kind
// plus the human message. Anything outside the taxonomy becomes a plain 500.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		c.JSON(apperrors.HTTPStatus(appErr), gin.H{
			"kind":    appErr.Kind,
			"message": appErr.Error(),
		})
		return
	}
	logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"kind":    "INTERNAL",
		"message": "internal server error",
	})
}
