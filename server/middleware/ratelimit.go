package middleware

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/userservice/errors"
	"github.com/kbukum/userservice/logger"
	"github.com/kbukum/userservice/ratelimit"
)

// KeyFunc extracts the rate limit key from a request.
type KeyFunc func(*gin.Context) string

// IPBasedKey keys attempts by client IP.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimit returns a gin middleware that counts every request against
// limiter and answers 429 RATE_LIMITED with Retry-After once the window is
// exhausted. Limiter errors let the request through.
func RateLimit(limiter ratelimit.Limiter, keyFunc KeyFunc, log *logger.Logger) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = IPBasedKey
	}
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), keyFunc(c))
		if err != nil {
			log.WithContext(c.Request.Context()).WithError(err).Warn("Rate limiter failed, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			abortWithError(c, apperrors.RateLimited().WithDetail("retry_after_seconds", seconds))
			return
		}
		c.Next()
	}
}
