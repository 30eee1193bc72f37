package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/an-furnish/furnish-api/config"
	"github.com/an-furnish/furnish-api/logger"
)

const serviceName = "an-furnish-api"

func main() {
	bootLog := logger.New(logger.Options{ServiceName: serviceName})

	cfg, envFile, err := config.Load()
	if err != nil {
		bootLog.Fatal(context.Background(), "failed to load config", err)
	}
	config.SetConfig(cfg)

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	if envFile != "" {
		logg.Info(logg.WithField(context.Background(), "file", envFile), "loaded configuration from env file")
	} else {
		logg.Info(context.Background(), "no .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, logg)
	if err != nil {
		logg.Fatal(ctx, "failed to bootstrap application", err)
	}

	err = app.serve(ctx)
	app.Close()
	if err != nil {
		logg.Fatal(ctx, "api server stopped unexpectedly", err)
	}
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight requests
func (a *application) serve(ctx context.Context) error {
	router, err := setupRouter(a)
	if err != nil {
		return err
	}

	addr := ":" + a.cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := a.logg.WithFields(ctx, map[string]any{
		"env":    a.cfg.GoEnv,
		"addr":   addr,
		"store":  a.cfg.StoreDriver,
		"auth0":  a.cfg.UsesAuth0(),
		"limits": a.limiter != nil,
	})
	a.logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	a.logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-serveErr
}
