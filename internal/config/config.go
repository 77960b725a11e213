// Package config reads process settings from the environment, after loading
// an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	HTTPAddr string
	GRPCAddr string

	DBDriver    string
	MySQLDSN    string
	PostgresDSN string
	SQLitePath  string

	// RedisAddr is empty when idempotency and dashboard caching are off.
	RedisAddr string

	DeletePolicy      domain.DeletePolicy
	LowStockThreshold int
	DashboardCacheTTL time.Duration
	ShutdownTimeout   time.Duration

	LogLevel  slog.Level
	LogFormat string
}

// Load reads .env from the working directory when present and builds the
// configuration from the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		HTTPAddr:    get("HTTP_ADDR", ":8080"),
		GRPCAddr:    get("GRPC_ADDR", ":50051"),
		DBDriver:    strings.ToLower(get("DB_DRIVER", DriverSQLite)),
		MySQLDSN:    get("MYSQL_DSN", "root:root@tcp(localhost:3306)/inventory?parseTime=true"),
		PostgresDSN: get("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=inventory port=5432 sslmode=disable"),
		SQLitePath:  get("SQLITE_PATH", "inventory.db"),
		RedisAddr:   get("REDIS_ADDR", ""),
		LogFormat:   strings.ToLower(get("LOG_FORMAT", "json")),
	}

	switch cfg.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return Config{}, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DBDriver)
	}

	policy, err := domain.ParseDeletePolicy(get("WAREHOUSE_DELETE_POLICY", string(domain.DeletePolicyCascade)))
	if err != nil {
		return Config{}, fmt.Errorf("WAREHOUSE_DELETE_POLICY: %w", err)
	}
	cfg.DeletePolicy = policy

	threshold, err := strconv.Atoi(get("LOW_STOCK_THRESHOLD", "10"))
	if err != nil || threshold < 0 {
		return Config{}, fmt.Errorf("LOW_STOCK_THRESHOLD: must be a non-negative integer, got %q", getenv("LOW_STOCK_THRESHOLD"))
	}
	cfg.LowStockThreshold = threshold

	if cfg.DashboardCacheTTL, err = time.ParseDuration(get("DASHBOARD_CACHE_TTL", "30s")); err != nil {
		return Config{}, fmt.Errorf("DASHBOARD_CACHE_TTL: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(get("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return Config{}, fmt.Errorf("LOG_FORMAT: expected json or text, got %q", cfg.LogFormat)
	}
	return cfg, nil
}

// DSN returns the connection string for the selected driver.
func (c Config) DSN() string {
	switch c.DBDriver {
	case DriverMySQL:
		return c.MySQLDSN
	case DriverPostgres:
		return c.PostgresDSN
	case DriverSQLite:
		return c.SQLitePath
	default:
		return ""
	}
}

func (c Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
