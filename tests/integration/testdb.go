//go:build integration

// Package integration runs the mapping engine against a real PostgreSQL
// database started with testcontainers.
package integration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm/logger"

	applog "github.com/wozzarvl/InterfazInAction/internal/infrastructure/logger"
)

var (
	// Shared container for all tests in the package
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// erpSchema holds the target tables of the default processes
const erpSchema = `
DROP SCHEMA IF EXISTS erp CASCADE;
CREATE SCHEMA erp;
CREATE TABLE erp.item_group (
	id SERIAL PRIMARY KEY,
	name VARCHAR(100) NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE erp.measure_unit (
	id SERIAL PRIMARY KEY,
	name VARCHAR(20) NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE erp.item (
	id SERIAL PRIMARY KEY,
	code VARCHAR(40) NOT NULL UNIQUE,
	description VARCHAR(200),
	weight NUMERIC(12,3),
	management_type VARCHAR(20),
	item_group_name VARCHAR(100),
	measure_unit_name VARCHAR(20),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE erp.sku (
	id SERIAL PRIMARY KEY,
	barcode VARCHAR(40) NOT NULL UNIQUE,
	item_code VARCHAR(40) NOT NULL,
	type VARCHAR(20),
	measure_unit_name VARCHAR(20),
	equivalence NUMERIC(12,3) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE erp.goods_receipt (
	id BIGSERIAL PRIMARY KEY,
	code VARCHAR(40) NOT NULL,
	document_date DATE,
	supplier_code VARCHAR(40),
	cedis_code VARCHAR(10)
);
CREATE TABLE erp.goods_receipt_line (
	id BIGSERIAL PRIMARY KEY,
	goods_receipt_id BIGINT NOT NULL REFERENCES erp.goods_receipt(id),
	line_number INT NOT NULL,
	item_code VARCHAR(40),
	quantity NUMERIC(12,3),
	measure_unit_name VARCHAR(20)
);
`

// TestDB is a migrated database in a PostgreSQL container
type TestDB struct {
	*persistence.Database
	DSN string
	t   *testing.T
}

// NewSharedTestDB connects to the package's PostgreSQL container, starting it
// on first use. The configuration tables are migrated and the erp schema is
// recreated, so each test starts from empty tables.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	ctx := context.Background()
	if sharedContainer == nil {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("mapping_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("admin123"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err, "Failed to start PostgreSQL container")

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err, "Failed to get connection string")

		sharedContainer = container
		sharedContainerDSN = dsn
	}

	var opts []persistence.Option
	if os.Getenv("TEST_DB_DEBUG") != "" {
		opts = append(opts, persistence.WithLogger(applog.NewGormLogger(zaptest.NewLogger(t), logger.Info)))
	}
	db, err := persistence.Open(gormpostgres.Open(sharedContainerDSN), opts...)
	require.NoError(t, err, "Failed to connect to database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.MigrateConfiguration(ctx), "Failed to migrate configuration tables")
	require.NoError(t, db.DB.Exec(`DELETE FROM integration_fields; DELETE FROM integration_processes;`).Error)
	require.NoError(t, db.DB.Exec(erpSchema).Error, "Failed to create erp schema")

	return &TestDB{Database: db, DSN: sharedContainerDSN, t: t}
}

// CleanupSharedContainer terminates the shared container.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sharedContainer.Terminate(ctx); err != nil {
			zap.L().Warn("Failed to terminate container", zap.Error(err))
		}
		sharedContainer = nil
		sharedContainerDSN = ""
	}
}
