package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/config"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/persistence/models"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/telemetry"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectTimeout = 10 * time.Second

// Database wraps the GORM handle shared by the configuration repository
// and the target table gateway.
type Database struct {
	DB *gorm.DB
}

// Option configures Open and NewDatabase
type Option func(*dbOptions)

type dbOptions struct {
	logger  logger.Interface
	tracing *telemetry.DBTracingPlugin
}

// WithLogger sets the GORM logger. The default is silent.
func WithLogger(l logger.Interface) Option {
	return func(o *dbOptions) { o.logger = l }
}

// WithTracing installs the DB tracing plugin on the connection
func WithTracing(p *telemetry.DBTracingPlugin) Option {
	return func(o *dbOptions) { o.tracing = p }
}

// NewDatabase connects to PostgreSQL, sizes the pool from cfg and checks
// the server answers before returning.
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	d, err := Open(postgres.Open(cfg.DSN()), opts...)
	if err != nil {
		return nil, err
	}

	pool, err := d.pool()
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.DBName, err)
	}
	return d, nil
}

// Open opens a Database on any dialector. Tests use it with sqlite and sqlmock.
// Every write goes through an explicit transaction, so GORM's implicit one is off.
func Open(dialector gorm.Dialector, opts ...Option) (*Database, error) {
	o := dbOptions{logger: logger.Default.LogMode(logger.Silent)}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 o.logger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if o.tracing != nil {
		if err := o.tracing.RegisterOtelGorm(db); err != nil {
			return nil, fmt.Errorf("register database tracing: %w", err)
		}
	}
	return &Database{DB: db}, nil
}

// MigrateConfiguration creates or updates the mapping configuration tables.
// Target tables are owned by the ERP schema and are never migrated here.
func (d *Database) MigrateConfiguration(ctx context.Context) error {
	return d.DB.WithContext(ctx).AutoMigrate(
		&models.IntegrationProcessModel{},
		&models.IntegrationFieldModel{},
	)
}

func (d *Database) pool() (*sql.DB, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}
	return pool, nil
}

// Ping reports whether the database answers
func (d *Database) Ping(ctx context.Context) error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

// Stats returns the connection pool counters
func (d *Database) Stats() (sql.DBStats, error) {
	pool, err := d.pool()
	if err != nil {
		return sql.DBStats{}, err
	}
	return pool.Stats(), nil
}

// Close releases every pooled connection
func (d *Database) Close() error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.Close()
}
