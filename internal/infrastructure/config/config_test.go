package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// managedEnv lists the variables the tests touch. Viper ignores empty values,
// so setting them to "" through t.Setenv clears them for the test.
var managedEnv = []string{
	"ERP_APP_NAME",
	"ERP_APP_ENV",
	"ERP_APP_PORT",
	"ERP_DATABASE_HOST",
	"ERP_DATABASE_PORT",
	"ERP_DATABASE_USER",
	"ERP_DATABASE_PASSWORD",
	"ERP_DATABASE_DBNAME",
	"ERP_DATABASE_SSLMODE",
	"ERP_DATABASE_MAX_OPEN_CONNS",
	"ERP_DATABASE_MAX_IDLE_CONNS",
	"ERP_MAPPING_ALLOWED_TABLES",
	"ERP_MAPPING_QUICK_ID_PREFIX",
	"ERP_STORAGE_ENABLED",
	"ERP_STORAGE_BUCKET",
	"ERP_TELEMETRY_SAMPLING_RATIO",
	"ERP_TELEMETRY_DB_LOG_FULL_SQL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedEnv {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "interfaz-in-action", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "wms", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "924", cfg.Mapping.QuickIDPrefix)
		assert.Empty(t, cfg.Mapping.AllowedTables)
		assert.Equal(t, "interfaz-in-action", cfg.Telemetry.ServiceName)
		assert.Equal(t, int64(20<<20), cfg.HTTP.MaxBodySize)
		assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
		assert.False(t, cfg.Storage.Enabled)
	})

	t.Run("loads values from environment variables with ERP prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_APP_NAME", "test-app")
		t.Setenv("ERP_APP_PORT", "9000")
		t.Setenv("ERP_DATABASE_HOST", "testdb.local")
		t.Setenv("ERP_DATABASE_PORT", "5433")
		t.Setenv("ERP_DATABASE_PASSWORD", "testpass")
		t.Setenv("ERP_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("ERP_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("ERP_MAPPING_ALLOWED_TABLES", "erp.item erp.sku")
		t.Setenv("ERP_MAPPING_QUICK_ID_PREFIX", "777")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, []string{"erp.item", "erp.sku"}, cfg.Mapping.AllowedTables)
		assert.Equal(t, "777", cfg.Mapping.QuickIDPrefix)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("ERP_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects invalid allowed table names", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_MAPPING_ALLOWED_TABLES", "erp.item;drop")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mapping.allowed_tables")
	})

	t.Run("storage requires a bucket when enabled", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_APP_ENV", "production")
		t.Setenv("ERP_DATABASE_PASSWORD", "secure-password")
		t.Setenv("ERP_DATABASE_SSLMODE", "require")
		t.Setenv("ERP_MAPPING_ALLOWED_TABLES", "erp.item")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("ERP_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("ERP_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("requires a table allow-list in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("ERP_MAPPING_ALLOWED_TABLES", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mapping.allowed_tables must be configured")
	})

	t.Run("rejects full SQL tracing in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("ERP_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	clearEnv(t)
	t.Setenv("ERP_APP_ENV", "production")
	t.Setenv("ERP_STORAGE_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	for _, want := range []string{"storage.bucket", "database.password", "sslmode", "mapping.allowed_tables"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoad_ExplicitZeroSamplingRatio(t *testing.T) {
	clearEnv(t)
	t.Setenv("ERP_TELEMETRY_SAMPLING_RATIO", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Telemetry.SamplingRatio)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.toml")
	content := `
[app]
port = "9090"

[mapping]
allowed_tables = ["erp.item", "erp.item_group", "erp.measure_unit"]
quick_id_prefix = "925"

[http]
read_timeout = "45s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, []string{"erp.item", "erp.item_group", "erp.measure_unit"}, cfg.Mapping.AllowedTables)
	assert.Equal(t, "925", cfg.Mapping.QuickIDPrefix)
	assert.Equal(t, 45*time.Second, cfg.HTTP.ReadTimeout)

	_, err = LoadFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}
