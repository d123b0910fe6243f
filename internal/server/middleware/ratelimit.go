package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"ikhtibar/internal/pkg/ratelimit"
)

// RateLimitResponse is the 429 body.
type RateLimitResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"` // seconds
}

// RateLimit throttles brute-force attempts against the route it guards.
// Requests are keyed by client IP and route so one abusive address
// cannot lock anyone else out. A request that finishes below 400 resets
// the counter: only failed attempts accumulate toward the lockout. A
// broken limiter store fails open; login availability beats throttling.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.FullPath()

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		if !decision.Allowed {
			retryAfter := int(decision.RetryAfter.Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, RateLimitResponse{
				Error:      "Too many requests",
				Message:    "too many attempts, please try again later",
				RetryAfter: retryAfter,
			})
			return
		}

		c.Next()

		if c.Writer.Status() < 400 {
			if err := limiter.Reset(c.Request.Context(), key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to reset rate limit counter")
			}
		}
	}
}
