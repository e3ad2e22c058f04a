package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/userservice/errors"
	"github.com/kbukum/userservice/logger"
)

// abortWithError stops the gin chain with an AppError response.
func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ForRequest(logger.RequestIDFromContext(c.Request.Context())))
}
