package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
)

// newMockDatabase puts sqlmock behind the postgres dialector. Pings are
// expectations too, so health checks can be scripted.
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := Open(postgres.New(postgres.Config{Conn: conn, DriverName: "postgres"}))
	require.NoError(t, err)
	return db, mock
}

// newSQLiteDatabase opens an in-memory sqlite Database with the configuration tables.
// One connection keeps every statement on the same in-memory database.
func newSQLiteDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.MigrateConfiguration(context.Background()))
	return db
}

func TestDatabase_Ping(t *testing.T) {
	tests := []struct {
		name    string
		pingErr error
	}{
		{"reachable", nil},
		{"refused", errors.New("dial tcp 10.0.0.5:5432: connection refused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDatabase(t)
			mock.ExpectPing().WillReturnError(tt.pingErr)

			err := db.Ping(context.Background())
			if tt.pingErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, "connection refused")
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDatabase_StatsAndClose(t *testing.T) {
	db := newSQLiteDatabase(t)

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
	assert.Zero(t, stats.InUse)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}

func TestOpen_WithTracing(t *testing.T) {
	cfg := telemetry.DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.System = "sqlite"

	db, err := Open(sqlite.Open(":memory:"), WithTracing(telemetry.NewDBTracingPlugin(cfg, zap.NewNop())))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for name, registered := range map[string]bool{
		"raw":    db.DB.Callback().Raw().Get("mapping_db:finish_raw") != nil,
		"row":    db.DB.Callback().Row().Get("mapping_db:finish_row") != nil,
		"create": db.DB.Callback().Create().Get("mapping_db:start_create") != nil,
	} {
		assert.True(t, registered, name)
	}
}

func TestDatabase_MigrateConfiguration(t *testing.T) {
	db := newSQLiteDatabase(t)
	m := db.DB.Migrator()

	assert.True(t, m.HasTable("integration_processes"))
	assert.True(t, m.HasTable("integration_fields"))
	assert.True(t, m.HasColumn("integration_fields", "is_detail_line"))
	// ERP target tables are never created by the service
	assert.False(t, m.HasTable("materials"))
}
