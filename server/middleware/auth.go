package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/userservice/auth"
	"github.com/kbukum/userservice/auth/authctx"
	apperrors "github.com/kbukum/userservice/errors"
	"github.com/kbukum/userservice/logger"
)

// userIdentified is implemented by claims that carry a numeric user ID.
type userIdentified interface {
	UserID() (int64, error)
}

// Auth returns a gin middleware that requires an "Authorization: Bearer"
// header, validates the token and stores the claims with authctx.Set.
// Token failures keep their specific code (TOKEN_EXPIRED, SIGNATURE_INVALID,
// ...) and all map to 401.
func Auth(validator auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer`)
			abortWithError(c, apperrors.Unauthorized(""))
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
			if appErr, ok := apperrors.AsAppError(err); ok && apperrors.IsTokenCode(appErr.Code) {
				abortWithError(c, appErr)
				return
			}
			abortWithError(c, apperrors.Unauthorized("Invalid authentication token."))
			return
		}

		ctx := authctx.Set(c.Request.Context(), claims)
		if u, ok := claims.(userIdentified); ok {
			if id, err := u.UserID(); err == nil {
				ctx = logger.ContextWithUserID(ctx, strconv.FormatInt(id, 10))
			}
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
