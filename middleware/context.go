package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/an-furnish/furnish-api/apperrors"
	"github.com/an-furnish/furnish-api/logger"
)

const loggerKey = "logger"

// LoggerFrom returns the logger installed by Logging, or a no-op logger
func LoggerFrom(c *gin.Context) *logger.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*logger.Logger); ok && l != nil {
			return l
		}
	}
	return logger.Nop()
}

// WriteError renders err as {"code","message"} and aborts the chain.
// Server-side failures are logged with their cause; clients only see the public message.
func WriteError(c *gin.Context, err error) {
	WriteErrorAs(c, err, "")
}

// WriteErrorAs is WriteError with a caller-chosen message for errors whose own
// message is not shown to clients
func WriteErrorAs(c *gin.Context, err error, privateFallback string) {
	code := apperrors.CodeOf(err)
	meta := apperrors.MetadataFor(code)

	if meta.HTTPStatus >= 500 {
		LoggerFrom(c).Error(c.Request.Context(), "request failed", err)
	}

	message := apperrors.PublicMessage(err)
	if !meta.Exposed && privateFallback != "" {
		message = privateFallback
	}

	c.AbortWithStatusJSON(meta.HTTPStatus, gin.H{
		"code":    code,
		"message": message,
	})
}
