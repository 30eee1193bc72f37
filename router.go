package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/an-furnish/furnish-api/controllers"
	"github.com/an-furnish/furnish-api/middleware"
)

// setupRouter mounts every route under /api plus /metrics
func setupRouter(app *application) (*gin.Engine, error) {
	if app.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(app.logg),
		middleware.Logging(app.logg),
		middleware.Recoverer(),
		middleware.Metrics(app.httpMetrics),
	)
	if len(app.cfg.CORSAllowedOrigins) > 0 {
		router.Use(middleware.CORS(app.cfg.CORSAllowedOrigins))
	}

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{})))

	window := app.cfg.RateLimitWindow
	orderLimit := middleware.RateLimit(middleware.NewRateLimitPolicy("orders", window, app.cfg.RateLimitOrders), app.limiter)
	trackLimit := middleware.RateLimit(middleware.NewRateLimitPolicy("tracking", window, app.cfg.RateLimitTracking), app.limiter)
	loginLimit := middleware.RateLimit(middleware.NewRateLimitPolicy("login", window, app.cfg.RateLimitLogin), app.limiter)

	adminHandlers, err := adminAuth(app)
	if err != nil {
		return nil, err
	}

	api := router.Group("/api")
	{
		api.GET("/health", controllers.HealthCheck)
		api.GET("/database/status", controllers.DatabaseStatus)

		// Public storefront routes
		api.POST("/orders", orderLimit, controllers.CreateOrder)
		api.GET("/orders/statuses", controllers.GetOrderStatuses)
		api.GET("/orders/track/:humanCode", trackLimit, controllers.TrackOrder)
		api.POST("/orders/:id/attachment", orderLimit, controllers.UploadOrderAttachment)

		api.GET("/categories", controllers.ListCategories)
		api.GET("/products", controllers.ListProducts)
		api.GET("/products/:id", controllers.GetProduct)

		api.POST("/auth/setup", loginLimit, controllers.SetupAdmin)
		api.POST("/auth/login", loginLimit, controllers.Login)

		admin := api.Group("")
		admin.Use(adminHandlers...)
		{
			admin.GET("/auth/me", controllers.GetMe)
			admin.GET("/orders", controllers.ListOrders)
			admin.GET("/orders/:id", controllers.GetOrder)
			admin.PUT("/orders/:id/status", controllers.UpdateOrderStatus)

			admin.POST("/categories", controllers.CreateCategory)
			admin.DELETE("/categories/:id", controllers.DeleteCategory)
			admin.POST("/products", controllers.CreateProduct)
			admin.DELETE("/products/:id", controllers.DeleteProduct)
		}
	}

	return router, nil
}

// adminAuth picks Auth0 RS256 validation when a tenant is configured, local HS256 tokens otherwise
func adminAuth(app *application) ([]gin.HandlerFunc, error) {
	if !app.cfg.UsesAuth0() {
		return []gin.HandlerFunc{middleware.LocalAuth(app.auth)}, nil
	}

	ensureValidToken, err := middleware.EnsureValidToken(app.cfg, app.logg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up Auth0 middleware: %w", err)
	}
	handlers := []gin.HandlerFunc{ensureValidToken}
	if app.cfg.Auth0AdminScope != "" {
		handlers = append(handlers, middleware.RequireScope(app.cfg.Auth0AdminScope))
	}
	return handlers, nil
}
