// middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/coregate/db"
	coregate_errors "github.com/dev-mohitbeniwal/coregate/errors"
	logger "github.com/dev-mohitbeniwal/coregate/logging"
	"github.com/dev-mohitbeniwal/coregate/signature"
	"github.com/dev-mohitbeniwal/coregate/util"
)

// RateLimiter allows limit requests per window for each API key, keyed by
// its fingerprint and falling back to the client IP. It is a no-op while Redis is unavailable and lets
// requests through when a check fails.
func RateLimiter(limit int, per time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !db.Available() {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if apiKey := c.GetHeader(signature.HeaderAPIKey); apiKey != "" {
			key = "key:" + signature.Fingerprint(apiKey)
		}

		allowed, err := db.RateLimit(c.Request.Context(), key, limit, per)
		if err != nil {
			logger.Warn("Rate limiting failed, allowing request", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Duration", per.String())

		if !allowed {
			util.RespondWithError(c, http.StatusTooManyRequests, "Rate limit exceeded", coregate_errors.ErrRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}
