package middleware

import (
	"github.com/gin-gonic/gin"

	"ikhtibar/internal/pkg/id"
)

// HeaderRequestID carries the request ID on both directions.
const HeaderRequestID = "X-Request-ID"

// RequestID assigns each request an ID, honoring one supplied by the
// caller, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = id.New()
		}

		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()
	}
}
