package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
)

func seededRepository(t *testing.T) *GormProcessRepository {
	t.Helper()
	db := newSQLiteDatabase(t)
	repo := NewGormProcessRepository(db.DB)
	n, err := SeedDefaults(context.Background(), repo)
	require.NoError(t, err)
	require.Equal(t, len(DefaultProcesses()), n)
	return repo
}

func TestGormProcessRepository_FindByInterface(t *testing.T) {
	repo := seededRepository(t)

	t.Run("orders processes and fields", func(t *testing.T) {
		processes, err := repo.FindByInterface(context.Background(), InterfaceMaterials)
		require.NoError(t, err)
		require.Len(t, processes, 3)

		assert.Equal(t, "SAP_MATERIAL_ITEM", processes[0].ProcessName)
		assert.Equal(t, "SAP_MATERIAL_SKU", processes[1].ProcessName)
		assert.Equal(t, "SAP_MATERIAL_UOM", processes[2].ProcessName)

		item := processes[0]
		require.NotEmpty(t, item.Fields)
		assert.Equal(t, "code", item.Fields[0].DbColumn)
		assert.True(t, item.Fields[0].IsKey)
		for i := 1; i < len(item.Fields); i++ {
			assert.Less(t, item.Fields[i-1].ID, item.Fields[i].ID)
		}
		last := item.Fields[len(item.Fields)-1]
		assert.Equal(t, "erp.measure_unit", last.ReferenceTable)
		assert.Equal(t, "name", last.ReferenceColumn)
	})

	t.Run("keeps column names with spaces", func(t *testing.T) {
		processes, err := repo.FindByInterface(context.Background(), InterfaceCustomers)
		require.NoError(t, err)
		require.Len(t, processes, 3)

		var found bool
		for _, f := range processes[1].Fields {
			if f.DbColumn == "distribution channel" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("unknown interface", func(t *testing.T) {
		_, err := repo.FindByInterface(context.Background(), "NOPE")
		require.Error(t, err)
		assert.ErrorIs(t, err, integration.ErrConfigurationNotFound)
		assert.Contains(t, err.Error(), "NOPE")
	})
}

func TestGormProcessRepository_FindOutbound(t *testing.T) {
	repo := seededRepository(t)
	ctx := context.Background()

	t.Run("by process name", func(t *testing.T) {
		p, err := repo.FindOutbound(ctx, "MMI021_GOODS_RECEIPT")
		require.NoError(t, err)
		assert.True(t, p.IsOutbound())
		assert.Equal(t, "erp.goods_receipt_line", p.DetailTable)
	})

	t.Run("by interface name", func(t *testing.T) {
		p, err := repo.FindOutbound(ctx, InterfaceGoodsReceipt)
		require.NoError(t, err)
		assert.Equal(t, "MMI021_GOODS_RECEIPT", p.ProcessName)

		var details int
		for _, f := range p.Fields {
			if f.IsDetailLine {
				details++
			}
		}
		assert.Equal(t, 4, details)
	})

	t.Run("interface without template", func(t *testing.T) {
		_, err := repo.FindOutbound(ctx, InterfaceMaterials)
		assert.ErrorIs(t, err, integration.ErrConfigurationNotFound)
	})
}

func TestGormProcessRepository_FindAll(t *testing.T) {
	repo := seededRepository(t)

	processes, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, processes, len(DefaultProcesses()))
	assert.Equal(t, InterfaceMaterials, processes[0].InterfaceName)
}

func TestGormProcessRepository_Save(t *testing.T) {
	repo := seededRepository(t)
	ctx := context.Background()

	t.Run("replaces fields on resave", func(t *testing.T) {
		p := integration.IntegrationProcess{
			ProcessName:   "SAP_MATERIAL_ITEM",
			InterfaceName: InterfaceMaterials,
			TargetTable:   "erp.item",
			XmlIterator:   "//Item",
			Order:         1,
			Fields: []integration.IntegrationField{
				{XmlPath: "Code", DbColumn: "code", IsKey: true},
			},
		}
		require.NoError(t, repo.Save(ctx, &p))
		assert.NotZero(t, p.Fields[0].ID)

		processes, err := repo.FindByInterface(ctx, InterfaceMaterials)
		require.NoError(t, err)
		require.Len(t, processes, 3)
		assert.Equal(t, "//Item", processes[0].XmlIterator)
		require.Len(t, processes[0].Fields, 1)
		assert.Equal(t, integration.DataTypeString, processes[0].Fields[0].DataType)
	})

	t.Run("rejects values over the column limits", func(t *testing.T) {
		p := integration.IntegrationProcess{
			ProcessName:   "TOO_LONG_TARGET",
			InterfaceName: "X",
			TargetTable:   string(make([]byte, 101)),
		}
		err := repo.Save(ctx, &p)
		assert.ErrorIs(t, err, integration.ErrConfigurationInvalid)
	})
}

func TestGormProcessRepository_DatabaseError(t *testing.T) {
	db, mock := newMockDatabase(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "integration_processes" WHERE interface_name = $1`)).
		WithArgs("MMI019").
		WillReturnError(errors.New("relation \"integration_processes\" does not exist"))

	repo := NewGormProcessRepository(db.DB)
	_, err := repo.FindByInterface(context.Background(), "MMI019")

	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrPersistenceFailure)
	assert.Equal(t, `relation "integration_processes" does not exist`, err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProcessRepository_InvalidStoredRow(t *testing.T) {
	db, mock := newMockDatabase(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "integration_processes"`)).
		WillReturnRows(sqlmock.NewRows([]string{"process_name", "interface_name", "target_table", "process_order"}).
			AddRow("P1", "MMI019", "", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "integration_fields"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "process_name"}))

	repo := NewGormProcessRepository(db.DB)
	_, err := repo.FindByInterface(context.Background(), "MMI019")

	assert.ErrorIs(t, err, integration.ErrConfigurationInvalid)
}
