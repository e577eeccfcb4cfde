// Package bootstrap assembles the mapping engine from configuration. The HTTP
// server and the mapctl command share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	appintegration "github.com/wozzarvl/InterfazInAction/internal/application/integration"
	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/config"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/logger"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/persistence"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/persistence/dynsql"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/storage"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// App holds the wired services and everything that must be released on exit
type App struct {
	Config         *config.Config
	Logger         *zap.Logger
	Database       *persistence.Database
	Processes      *persistence.GormProcessRepository
	Inbound        *appintegration.InboundService
	Outbound       *appintegration.OutboundService
	Configuration  *appintegration.ConfigurationService
	TracerProvider *telemetry.TracerProvider
	MeterProvider  *telemetry.MeterProvider
}

// NewLogger builds the zap logger described by cfg
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.FromAppConfig(cfg.App, cfg.Log))
}

// New connects to the database and wires the inbound, outbound and
// configuration services. Close must be called when the App is no longer used.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: log}

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.ConfigFrom(cfg.Telemetry), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.TracerProvider = tp

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfigFrom(cfg.Telemetry), log)
	if err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	app.MeterProvider = mp

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithParameterizedQueries(!cfg.Telemetry.DBLogFullSQL))
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(gormLog),
		persistence.WithTracing(telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg.Telemetry), log)),
	)
	if err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Database = db
	log.Info("Database connected successfully")

	if err := app.wire(ctx); err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	return app, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg := a.Config
	a.Processes = persistence.NewGormProcessRepository(a.Database.DB)
	tables := persistence.NewGormTableGateway(a.Database.DB)
	guard := dynsql.NewGuard(cfg.Mapping.AllowedTables)
	if !guard.Restricted() {
		a.Logger.Warn("No table allow-list configured, mapping may write to any table")
	}

	a.Inbound = appintegration.NewInboundService(a.Processes, tables, guard, a.Logger)
	a.Outbound = appintegration.NewOutboundService(a.Processes, tables, guard,
		integration.NewGenerators(cfg.Mapping.QuickIDPrefix), a.Logger)
	a.Configuration = appintegration.NewConfigurationService(a.Processes, a.Logger)

	metrics, err := telemetry.NewMappingMetrics(a.MeterProvider.Meter(telemetry.TracerName))
	if err != nil {
		return fmt.Errorf("failed to register mapping metrics: %w", err)
	}
	a.Inbound.SetMappingMetrics(metrics)
	a.Outbound.SetMappingMetrics(metrics)

	if cfg.Storage.Enabled {
		archive, err := storage.NewS3PayloadArchive(&cfg.Storage, storage.WithLogger(a.Logger))
		if err != nil {
			return fmt.Errorf("failed to create payload archive: %w", err)
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to prepare payload archive: %w", err)
		}
		a.Inbound.SetPayloadArchive(archive)
		a.Outbound.SetPayloadArchive(archive)
		a.Logger.Info("Payload archive enabled", zap.String("bucket", archive.GetBucket()))
	}
	return nil
}

// Close releases the database and flushes telemetry
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Database != nil {
		if err := a.Database.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if a.MeterProvider != nil {
		errs = append(errs, a.MeterProvider.Shutdown(ctx))
	}
	if a.TracerProvider != nil {
		errs = append(errs, a.TracerProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
