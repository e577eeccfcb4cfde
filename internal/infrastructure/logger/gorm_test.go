package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_LogMode(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	gormLog := NewGormLogger(zap.New(core), gormlogger.Info, WithSlowThreshold(time.Second))

	newLogger := gormLog.LogMode(gormlogger.Warn)

	assert.Equal(t, gormlogger.Info, gormLog.level)
	assert.Equal(t, time.Second, gormLog.slowThreshold)
	newGormLog, ok := newLogger.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, newGormLog.level)
}

func TestGormLogger_Trace(t *testing.T) {
	sqlFn := func() (string, int64) { return `INSERT INTO "erp"."item" ("code") VALUES ('A')`, 1 }

	t.Run("error carries request and interface", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gormLog := NewGormLogger(zap.New(core), gormlogger.Error)

		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-9")
		ctx, _ = WithInterface(ctx, zap.NewNop(), "SDI003")
		gormLog.Trace(ctx, time.Now(), sqlFn, errors.New("duplicate key"))

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "SQL statement failed", entries[0].Message)
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-9", fields["request_id"])
		assert.Equal(t, "SDI003", fields["interface"])
		assert.Equal(t, "duplicate key", fields["error"])
		assert.Equal(t, "INSERT", fields["statement"])
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gormLog := NewGormLogger(zap.New(core), gormlogger.Error)
		gormLog.Trace(context.Background(), time.Now(), sqlFn, gormlogger.ErrRecordNotFound)
		assert.Empty(t, recorded.All())
	})

	t.Run("slow query warns", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gormLog := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Millisecond))
		gormLog.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
		require.Len(t, recorded.All(), 1)
		assert.Equal(t, "Slow SQL statement", recorded.All()[0].Message)
	})

	t.Run("info level logs queries at debug", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gormLog := NewGormLogger(zap.New(core), gormlogger.Info)
		gormLog.Trace(context.Background(), time.Now(), sqlFn, nil)
		require.Len(t, recorded.All(), 1)
		assert.Equal(t, zapcore.DebugLevel, recorded.All()[0].Level)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gormLog := NewGormLogger(zap.New(core), gormlogger.Silent)
		gormLog.Trace(context.Background(), time.Now(), sqlFn, errors.New("x"))
		assert.Empty(t, recorded.All())
	})
}

func TestGormLogger_ParamsFilter(t *testing.T) {
	sql := `UPDATE "erp"."item" SET "description" = $1 WHERE "code" = $2`

	plain := NewGormLogger(zap.NewNop(), gormlogger.Info)
	gotSQL, params := plain.ParamsFilter(context.Background(), sql, "Agua", "M1")
	assert.Equal(t, sql, gotSQL)
	assert.Equal(t, []any{"Agua", "M1"}, params)

	redacted := NewGormLogger(zap.NewNop(), gormlogger.Info, WithParameterizedQueries(true))
	gotSQL, params = redacted.ParamsFilter(context.Background(), sql, "Agua", "M1")
	assert.Equal(t, sql, gotSQL)
	assert.Nil(t, params)
}

func TestStatementKind(t *testing.T) {
	assert.Equal(t, "SELECT", statementKind("  select count(*) from item"))
	assert.Equal(t, "WITH", statementKind("with x as (select 1) select * from x"))
	assert.Equal(t, "", statementKind(""))
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
