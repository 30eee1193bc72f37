package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/an-furnish/furnish-api/apperrors"
	"github.com/an-furnish/furnish-api/config"
	"github.com/an-furnish/furnish-api/middleware"
	"github.com/an-furnish/furnish-api/services"
)

// HealthCheck handles GET /api/health
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "AN Furnish API is running",
	})
}

// DatabaseStatus handles GET /api/database/status - pings the order store
func DatabaseStatus(c *gin.Context) {
	svc := services.GetOrderService()
	if svc == nil || svc.Store() == nil {
		middleware.WriteError(c, apperrors.New(apperrors.CodeDependency, "order store is not initialized"))
		return
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	if err := svc.Store().Ping(ctx); err != nil {
		middleware.WriteErrorAs(c, apperrors.Wrap(apperrors.CodeDependency, err, "store ping"), "Database connection failed")
		return
	}

	driver := ""
	if cfg := config.GetConfig(); cfg != nil {
		driver = cfg.StoreDriver
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "connected",
		"message": "Database connected",
		"driver":  driver,
	})
}
