package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/an-furnish/furnish-api/apperrors"
)

// Recoverer turns a handler panic into a logged 500 with the usual error body
func Recoverer() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err := fmt.Errorf("panic: %v", rec)
				logg := LoggerFrom(c)
				ctx := logg.WithField(c.Request.Context(), "panic", fmt.Sprint(rec))
				logg.Error(ctx, "panic.recovered", err)

				c.AbortWithStatusJSON(apperrors.MetadataFor(apperrors.CodeInternal).HTTPStatus, gin.H{
					"code":    apperrors.CodeInternal,
					"message": apperrors.MetadataFor(apperrors.CodeInternal).PublicMessage,
				})
			}
		}()
		c.Next()
	}
}
