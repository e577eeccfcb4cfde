// Command server exposes the mapping engine over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/wozzarvl/InterfazInAction/internal/bootstrap"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/config"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/telemetry"
	"github.com/wozzarvl/InterfazInAction/internal/interfaces/http/handler"
	"github.com/wozzarvl/InterfazInAction/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// @title						Interfaz In Action API
// @version					1.0
// @description				Metadata driven mapping between ERP XML documents and relational tables.
// @BasePath					/api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

// run serves until ctx is cancelled or the listener fails, then drains
// in-flight requests for at most HTTP.ShutdownTimeout.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Info("Starting mapping service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer func() {
		if err := app.Close(context.WithoutCancel(ctx)); err != nil {
			log.Error("Error releasing resources", zap.Error(err))
		}
	}()

	srv, err := newServer(cfg, app, log)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server", zap.Duration("grace", cfg.HTTP.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info("Server exited gracefully")
	return nil
}

func newServer(cfg *config.Config, app *bootstrap.App, log *zap.Logger) (*http.Server, error) {
	engine := router.NewEngine(router.EngineConfig{
		HTTP:           cfg.HTTP,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: app.TracerProvider.IsEnabled(),
		MeterProvider:  app.MeterProvider,
		Logger:         log,
	}, router.Handlers{
		Integration:   handler.NewIntegrationHandler(app.Inbound, app.Outbound),
		Configuration: handler.NewConfigurationHandler(app.Configuration),
		System:        handler.NewSystemHandler(app.Database, telemetry.ServiceVersion),
	})
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			return nil, fmt.Errorf("invalid trusted proxies: %w", err)
		}
	}

	return &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}, nil
}
