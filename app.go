package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/an-furnish/furnish-api/config"
	"github.com/an-furnish/furnish-api/logger"
	"github.com/an-furnish/furnish-api/metrics"
	"github.com/an-furnish/furnish-api/services"
)

// counterStore is the subset of services.RedisCounter the rate limiter needs
type counterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// application holds everything the router and server need
type application struct {
	cfg         *config.Config
	logg        *logger.Logger
	registry    *prometheus.Registry
	httpMetrics *metrics.HTTPMetrics
	orders      *services.OrderService
	catalog     *services.CatalogService
	auth        *services.AuthService
	limiter     counterStore
	closers     []func(context.Context) error
}

// newApplication connects the configured stores and wires the services
func newApplication(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*application, error) {
	if logg == nil {
		logg = logger.Nop()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &application{
		cfg:         cfg,
		logg:        logg,
		registry:    registry,
		httpMetrics: metrics.NewHTTPMetrics(registry),
	}
	orderMetrics := metrics.NewOrderMetrics(registry)

	stores, err := app.openStores(ctx, orderMetrics)
	if err != nil {
		app.Close()
		return nil, err
	}

	var images services.ImageService
	if cfg.S3Enabled() {
		s3Service, err := services.InitS3Service(ctx, cfg)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init s3: %w", err)
		}
		images = services.InitImageService(s3Service)
	} else {
		logg.Warn(ctx, "AWS_S3_BUCKET not set, attachment uploads are disabled")
	}

	loc, err := cfg.NoteLocation()
	if err != nil {
		app.Close()
		return nil, err
	}

	app.orders = services.InitOrderService(services.OrderServiceOptions{
		Store:           stores.orders,
		Images:          images,
		Logger:          logg,
		Metrics:         orderMetrics,
		Location:        loc,
		MaxCodeAttempts: cfg.OrderCodeMaxAttempts,
	})

	app.catalog = services.InitCatalogService(services.CatalogServiceOptions{
		Store:  stores.catalog,
		Logger: logg,
	})

	if cfg.UsesAuth0() {
		services.SetAuthService(nil)
	} else {
		app.auth = services.InitAuthService(services.AuthServiceOptions{
			Store:  stores.admins,
			Secret: cfg.JWTSecret,
			Issuer: cfg.JWTIssuer,
			TTL:    cfg.JWTTTL,
			Logger: logg,
		})
	}

	if cfg.RateLimitEnabled() {
		counter, err := services.NewRedisCounter(ctx, cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.limiter = counter
		app.closers = append(app.closers, func(context.Context) error { return counter.Close() })
	} else {
		logg.Warn(ctx, "REDIS_URL not set, public rate limits are disabled")
	}

	return app, nil
}

// storeSet is one backend's implementation of every store
type storeSet struct {
	orders  services.OrderStore
	admins  services.AdminStore
	catalog services.CatalogStore
}

func (a *application) openStores(ctx context.Context, orderMetrics *metrics.OrderMetrics) (storeSet, error) {
	if a.cfg.StoreDriver == config.DriverMongo {
		db, err := config.ConnectMongo(ctx, a.cfg, a.logg)
		if err != nil {
			return storeSet{}, err
		}
		a.closers = append(a.closers, func(ctx context.Context) error { return db.Client().Disconnect(ctx) })

		orderStore := services.NewMongoOrderStore(db)
		if err := orderStore.EnsureIndexes(ctx); err != nil {
			return storeSet{}, fmt.Errorf("order indexes: %w", err)
		}
		adminStore := services.NewMongoAdminStore(db)
		if err := adminStore.EnsureIndexes(ctx); err != nil {
			return storeSet{}, fmt.Errorf("admin indexes: %w", err)
		}
		catalogStore := services.NewMongoCatalogStore(db)
		if err := catalogStore.EnsureIndexes(ctx); err != nil {
			return storeSet{}, fmt.Errorf("catalog indexes: %w", err)
		}
		a.logg.Info(ctx, "mongo store ready")
		return storeSet{orders: orderStore, admins: adminStore, catalog: catalogStore}, nil
	}

	db, err := config.ConnectDatabase(a.cfg, a.logg)
	if err != nil {
		return storeSet{}, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return storeSet{}, fmt.Errorf("failed to get database instance: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })

	orderStore := services.NewGormOrderStore(db, a.cfg.OrderNoteMaxRetries, orderMetrics)
	if err := orderStore.Migrate(); err != nil {
		return storeSet{}, fmt.Errorf("failed to migrate orders: %w", err)
	}
	adminStore := services.NewGormAdminStore(db)
	if err := adminStore.Migrate(); err != nil {
		return storeSet{}, fmt.Errorf("failed to migrate admins: %w", err)
	}
	catalogStore := services.NewGormCatalogStore(db)
	if err := catalogStore.Migrate(); err != nil {
		return storeSet{}, fmt.Errorf("failed to migrate catalog: %w", err)
	}
	a.logg.Info(ctx, "database migration completed successfully")
	return storeSet{orders: orderStore, admins: adminStore, catalog: catalogStore}, nil
}

// Close releases connections in reverse order of acquisition
func (a *application) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logg.Error(ctx, "error closing resource", err)
		}
	}
	a.closers = nil
}
