// internal/middleware/ratelimit_middleware.go
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"dossier-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLimiter is the slice of the rate limiter the middleware needs.
type RequestLimiter interface {
	Allow(ctx context.Context, key string, maxRequests int64, window time.Duration) (bool, error)
}

// RateLimitMiddleware throttles per acting identity. It is installed behind
// Auth(), so authenticated traffic is keyed by identity id; requests
// reaching it without one fall back to the client IP. Fails open when Redis
// is unreachable.
func RateLimitMiddleware(limiter RequestLimiter, maxRequests int64, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if actor, ok := GetIdentity(c); ok {
			key = strconv.FormatInt(actor.ID, 10)
		}

		allowed, err := limiter.Allow(c.Request.Context(), key, maxRequests, window)
		if err != nil {
			logger.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, "too many requests", nil)
			return
		}

		c.Next()
	}
}
