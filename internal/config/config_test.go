package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

func envOf(vals map[string]string) func(string) string {
	return func(key string) string { return vals[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "inventory.db", cfg.DSN())
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, domain.DeletePolicyCascade, cfg.DeletePolicy)
	assert.Equal(t, 10, cfg.LowStockThreshold)
	assert.Equal(t, 30*time.Second, cfg.DashboardCacheTTL)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"DB_DRIVER":               "MySQL",
		"MYSQL_DSN":               "u:p@tcp(db:3306)/inv",
		"REDIS_ADDR":              "redis:6379",
		"WAREHOUSE_DELETE_POLICY": "restrict",
		"LOW_STOCK_THRESHOLD":     "3",
		"DASHBOARD_CACHE_TTL":     "1m",
		"LOG_LEVEL":               "debug",
		"LOG_FORMAT":              "text",
	}))
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, "u:p@tcp(db:3306)/inv", cfg.DSN())
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, domain.DeletePolicyRestrict, cfg.DeletePolicy)
	assert.Equal(t, 3, cfg.LowStockThreshold)
	assert.Equal(t, time.Minute, cfg.DashboardCacheTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.NotNil(t, cfg.NewLogger())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"driver":    {"DB_DRIVER": "oracle"},
		"policy":    {"WAREHOUSE_DELETE_POLICY": "archive"},
		"threshold": {"LOW_STOCK_THRESHOLD": "-1"},
		"ttl":       {"DASHBOARD_CACHE_TTL": "soon"},
		"shutdown":  {"SHUTDOWN_TIMEOUT": "10"},
		"level":     {"LOG_LEVEL": "loud"},
		"format":    {"LOG_FORMAT": "xml"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envOf(env))
			assert.Error(t, err)
		})
	}
}
