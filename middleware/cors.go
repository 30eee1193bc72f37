package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS applies the storefront's allowed origin policy.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader, "X-Status-Warning", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           5 * time.Minute,
	})
}
