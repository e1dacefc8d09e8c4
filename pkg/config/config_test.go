package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Logistica-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("EXEMPT_LOCATION_IDS", "")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 900*time.Second, cfg.Reconcile.LockTTL)
	assert.Equal(t, 600*time.Second, cfg.Reconcile.Timeout)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.False(t, cfg.Redis.Enabled())
	assert.Empty(t, cfg.Ledger.ExemptLocationIDs)
	assert.False(t, cfg.OTel.Enabled)
}

func TestLoad_ListaDeExentasYCron(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("EXEMPT_LOCATION_IDS", " loc-int , ,loc-bodega-2")
	t.Setenv("RECONCILE_CRON", "0 3 * * *")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("CATALOG_FILE", "testdata/catalogo.xml")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"loc-int", "loc-bodega-2"}, cfg.Ledger.ExemptLocationIDs)
	assert.Equal(t, "0 3 * * *", cfg.Reconcile.Cron)
	assert.True(t, cfg.Redis.Enabled())
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "testdata/catalogo.xml", cfg.Storage.CatalogFile)
}

func TestLoad_DriverDesconocido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_TimeoutNoSuperaVigenciaDelCandado(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("RECONCILE_LOCK_TTL_SECONDS", "300")
	t.Setenv("RECONCILE_TIMEOUT_SECONDS", "600")

	_, err := config.Load()
	assert.ErrorContains(t, err, "RECONCILE_TIMEOUT_SECONDS")

	t.Setenv("RECONCILE_TIMEOUT_SECONDS", "0")
	_, err = config.Load()
	assert.Error(t, err)

	t.Setenv("RECONCILE_TIMEOUT_SECONDS", "300")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Reconcile.LockTTL, cfg.Reconcile.Timeout)
}

func TestLoad_TelemetriaRequiereEndpoint(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_ENDPOINT", "")

	_, err := config.Load()
	assert.ErrorContains(t, err, "OTEL_EXPORTER_ENDPOINT")

	t.Setenv("OTEL_EXPORTER_ENDPOINT", "otel-collector:4317")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.OTel.Enabled)
	assert.Equal(t, "otel-collector:4317", cfg.OTel.Endpoint)
}

func TestDSN_EscapaContrasena(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "logistica", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/logistica?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
