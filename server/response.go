package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/userservice/errors"
	"github.com/kbukum/userservice/logger"
	"github.com/kbukum/userservice/observability"
)

// RespondWithError writes err as the standard error body. Non-AppErrors
// become a generic 500. A 5xx is logged with its cause and trace ID and
// fails the request span; the cause never reaches the client.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		fields := map[string]interface{}{
			"code":   string(appErr.Code),
			"path":   c.FullPath(),
			"method": c.Request.Method,
		}
		if appErr.Cause != nil {
			fields[logger.FieldError] = appErr.Cause.Error()
		}
		ctx := c.Request.Context()
		if id := observability.TraceID(ctx); id != "" {
			fields["trace_id"] = id
		}
		observability.SetSpanError(ctx, appErr)
		logger.GetGlobalLogger().WithContext(ctx).Error(appErr.Message, fields)
	}

	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ForRequest(logger.RequestIDFromContext(c.Request.Context())))
}

// RespondOK sends a 200 response with body serialized as JSON.
func RespondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}
