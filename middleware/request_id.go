package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/an-furnish/furnish-api/logger"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's request id or mints one, echoes it back,
// and tags every log line of the request with it
func RequestID(logg *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		c.Header(RequestIDHeader, reqID)
		c.Set("request_id", reqID)

		if logg != nil {
			c.Request = c.Request.WithContext(logg.WithRequestID(c.Request.Context(), reqID))
		}

		c.Next()
	}
}
