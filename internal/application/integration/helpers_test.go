package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/persistence"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/persistence/dynsql"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
)

// testEngine wires the services to an in-memory sqlite database
type testEngine struct {
	db       *persistence.Database
	repo     *persistence.GormProcessRepository
	gateway  *persistence.GormTableGateway
	inbound  *InboundService
	outbound *OutboundService
}

func newTestEngine(t *testing.T, ddl ...string) *testEngine {
	t.Helper()

	db, err := persistence.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.MigrateConfiguration(context.Background()))
	for _, stmt := range ddl {
		require.NoError(t, db.DB.Exec(stmt).Error)
	}

	repo := persistence.NewGormProcessRepository(db.DB)
	gateway := persistence.NewGormTableGateway(db.DB)
	guard := dynsql.NewGuard(nil)
	log := zaptest.NewLogger(t)

	gen := integration.Generators{
		Now:           func() time.Time { return time.Date(2026, 2, 8, 5, 37, 6, 123000000, time.UTC) },
		QuickIDPrefix: integration.DefaultQuickIDPrefix,
	}

	return &testEngine{
		db:       db,
		repo:     repo,
		gateway:  gateway,
		inbound:  NewInboundService(repo, gateway, guard, log),
		outbound: NewOutboundService(repo, gateway, guard, gen, log),
	}
}

func (e *testEngine) save(t *testing.T, processes ...integration.IntegrationProcess) {
	t.Helper()
	for i := range processes {
		require.NoError(t, e.repo.Save(context.Background(), &processes[i]))
	}
}

func (e *testEngine) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.DB.Raw("SELECT COUNT(*) FROM "+table).Scan(&n).Error)
	return n
}

func (e *testEngine) rows(t *testing.T, query string, args ...any) []integration.Row {
	t.Helper()
	var results []map[string]any
	require.NoError(t, e.db.DB.Raw(query, args...).Scan(&results).Error)
	out := make([]integration.Row, len(results))
	for i, r := range results {
		out[i] = integration.Row(r)
	}
	return out
}

// MockPayloadArchive is a mock implementation of PayloadArchive
type MockPayloadArchive struct {
	mock.Mock
}

func (m *MockPayloadArchive) Archive(ctx context.Context, key string, body []byte) error {
	args := m.Called(ctx, key, body)
	return args.Error(0)
}

// MockProcessReader is a mock implementation of ProcessReader
type MockProcessReader struct {
	mock.Mock
}

func (m *MockProcessReader) FindByInterface(ctx context.Context, interfaceName string) ([]integration.IntegrationProcess, error) {
	args := m.Called(ctx, interfaceName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.IntegrationProcess), args.Error(1)
}

func (m *MockProcessReader) FindOutbound(ctx context.Context, name string) (*integration.IntegrationProcess, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.IntegrationProcess), args.Error(1)
}

func (m *MockProcessReader) FindAll(ctx context.Context) ([]integration.IntegrationProcess, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.IntegrationProcess), args.Error(1)
}

// MockTableGateway is a mock implementation of TableGateway
type MockTableGateway struct {
	mock.Mock
}

func (m *MockTableGateway) WithinTransaction(ctx context.Context, fn func(ctx context.Context, w integration.TableWriter) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func (m *MockTableGateway) SelectIn(ctx context.Context, table, column string, values []int64) ([]integration.Row, error) {
	args := m.Called(ctx, table, column, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Row), args.Error(1)
}
