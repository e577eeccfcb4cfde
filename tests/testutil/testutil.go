// Package testutil provides common test utilities for the mapping service:
// databases backed by sqlmock or in-memory SQLite, process fixtures and
// helpers for driving the gin engine.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/persistence"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB wraps a Database whose PostgreSQL connection is a sqlmock.
type MockDB struct {
	*persistence.Database
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a mock database. It is closed when the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := persistence.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}))
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{Database: db, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// NewSQLiteDB opens an in-memory SQLite database with the configuration
// tables migrated and the given DDL applied. A single connection is used so
// every statement sees the same memory database.
func NewSQLiteDB(t *testing.T, ddl ...string) *persistence.Database {
	t.Helper()

	db, err := persistence.Open(sqlite.Open(":memory:"))
	require.NoError(t, err, "Failed to open sqlite")
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.MigrateConfiguration(context.Background()), "Failed to migrate configuration tables")
	for _, stmt := range ddl {
		require.NoError(t, db.DB.Exec(stmt).Error, "Failed to apply DDL")
	}
	return db
}

// SaveProcesses stores processes through the GORM repository.
func SaveProcesses(t *testing.T, db *persistence.Database, processes ...integration.IntegrationProcess) {
	t.Helper()

	repo := persistence.NewGormProcessRepository(db.DB)
	for i := range processes {
		require.NoError(t, repo.Save(context.Background(), &processes[i]), "Failed to save process %s", processes[i].ProcessName)
	}
}

// CountRows returns the number of rows of table matching the optional where clause.
func CountRows(t *testing.T, db *persistence.Database, table, where string, args ...any) int64 {
	t.Helper()

	var n int64
	q := db.DB.Table(table)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

// ContextWithTimeout creates a context with a timeout for tests.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
