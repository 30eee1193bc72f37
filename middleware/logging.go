package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/an-furnish/furnish-api/logger"
)

// Logging installs logg on the gin context and writes start and completion lines
func Logging(logg *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logg == nil {
			c.Next()
			return
		}
		c.Set(loggerKey, logg)

		ctx := logg.WithFields(c.Request.Context(), map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		logg.Debug(ctx, "request.start")

		c.Next()

		ctx = logg.WithFields(ctx, map[string]any{
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		})
		logg.Info(ctx, "request.complete")
	}
}
