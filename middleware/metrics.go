package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/an-furnish/furnish-api/metrics"
)

// Metrics records request counts and latency by route template
func Metrics(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Observe(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
