package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultDBSlowThreshold = 200 * time.Millisecond

// DB span attributes added on top of otelgorm's.
const (
	dbAttrOperation    = attribute.Key("db.operation")
	dbAttrTable        = attribute.Key("db.sql.table")
	dbAttrRowsAffected = attribute.Key("db.rows_affected")
	dbAttrSlow         = attribute.Key("db.slow_query")
	dbAttrDurationMS   = attribute.Key("db.query_duration_ms")
)

// DBTracingConfig controls otelgorm instrumentation
type DBTracingConfig struct {
	Enabled       bool
	LogFullSQL    bool // keep bound values in spans
	SlowThreshold time.Duration
	System        string
}

// DefaultDBTracingConfig is disabled tracing against PostgreSQL
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowThreshold: defaultDBSlowThreshold,
		System:        "postgresql",
	}
}

// DBTracingConfigFrom enables DB tracing only when telemetry itself is on
func DBTracingConfigFrom(tc config.TelemetryConfig) DBTracingConfig {
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = tc.Enabled && tc.DBTraceEnabled
	cfg.LogFullSQL = tc.DBLogFullSQL
	if tc.DBSlowQueryThresh > 0 {
		cfg.SlowThreshold = tc.DBSlowQueryThresh
	}
	return cfg
}

// DBTracingPlugin installs otelgorm and annotates its spans with the GORM
// operation, affected rows and slow statement markers. Dynamic mapping
// statements go through Exec and Raw, so the row and raw processors are
// hooked along with the model ones.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a DBTracingPlugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// RegisterOtelGorm installs the plugin on db. It does nothing when disabled.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.System)}
	if !p.config.LogFullSQL {
		// mapped values come straight from partner documents
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	// registered first so annotate runs before otelgorm ends its span
	if err := p.hook(db); err != nil {
		return err
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.String("db_system", p.config.System),
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_threshold", p.config.SlowThreshold),
	)
	return nil
}

func (p *DBTracingPlugin) hook(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register(startHook("create"), markStart),
		cb.Create().After("gorm:create").Register(finishHook("create"), p.finish("create")),
		cb.Query().Before("gorm:query").Register(startHook("query"), markStart),
		cb.Query().After("gorm:query").Register(finishHook("query"), p.finish("query")),
		cb.Update().Before("gorm:update").Register(startHook("update"), markStart),
		cb.Update().After("gorm:update").Register(finishHook("update"), p.finish("update")),
		cb.Delete().Before("gorm:delete").Register(startHook("delete"), markStart),
		cb.Delete().After("gorm:delete").Register(finishHook("delete"), p.finish("delete")),
		cb.Row().Before("gorm:row").Register(startHook("row"), markStart),
		cb.Row().After("gorm:row").Register(finishHook("row"), p.finish("row")),
		cb.Raw().Before("gorm:raw").Register(startHook("raw"), markStart),
		cb.Raw().After("gorm:raw").Register(finishHook("raw"), p.finish("raw")),
	)
}

func startHook(op string) string  { return "mapping_db:start_" + op }
func finishHook(op string) string { return "mapping_db:finish_" + op }

type dbStartKey struct{}

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, dbStartKey{}, time.Now())
	}
}

func (p *DBTracingPlugin) finish(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		p.annotate(db, op)
	}
}

// annotate decorates the span current in the statement context
func (p *DBTracingPlugin) annotate(db *gorm.DB, op string) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(dbAttrOperation.String(op))
	if db.Statement.Table != "" {
		span.SetAttributes(dbAttrTable.String(db.Statement.Table))
	}
	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(dbAttrRowsAffected.Int64(db.Statement.RowsAffected))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}

	started, ok := ctx.Value(dbStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(started); elapsed > p.config.SlowThreshold {
		span.SetAttributes(dbAttrSlow.Bool(true), dbAttrDurationMS.Int64(elapsed.Milliseconds()))
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowThreshold.Milliseconds()),
		))
	}
}
