package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.ConnectionString)
	assert.Equal(t, 1, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, 10, cfg.Reports.TopCount)
	assert.Equal(t, 20.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 40, cfg.RateLimit.Burst)

	location, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, location)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_CONNECTION_STRING", "/tmp/sales.db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REPORT_CACHE_TTL", "30s")
	t.Setenv("REPORT_TOP_COUNT", "0")
	t.Setenv("REPORT_TIMEZONE", "Asia/Manila")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "/tmp/sales.db", cfg.Database.ConnectionString)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, 0, cfg.Reports.TopCount)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)

	location, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Manila", location.String())

	logger := NewLogger(cfg)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	connection := cfg.Database.ToConnectionConfig(logger)
	assert.Equal(t, "/tmp/sales.db", connection.DatabasePath)
	assert.Same(t, logger, connection.Logger)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown timezone", key: "REPORT_TIMEZONE", value: "Mars/Olympus"},
		{name: "negative top count", key: "REPORT_TOP_COUNT", value: "-1"},
		{name: "no connections", key: "DB_MAX_OPEN_CONNS", value: "0"},
		{name: "bad log level", key: "LOG_LEVEL", value: "loud"},
		{name: "negative rate", key: "RATE_LIMIT_RPS", value: "-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAdaptConfigForServerless(t *testing.T) {
	cfg := &Config{
		Database:  DatabaseConfig{ConnectionString: DefaultDatabasePath, MaxOpenConns: 4, MaxIdleConns: 4},
		RateLimit: RateLimitConfig{RequestsPerSecond: 20, Burst: 40},
	}

	unchanged := AdaptConfigForServerless(cfg, false)
	assert.Equal(t, 4, unchanged.Database.MaxOpenConns)

	adapted := AdaptConfigForServerless(cfg, true)
	assert.Equal(t, lambdaDatabasePath, adapted.Database.ConnectionString)
	assert.Equal(t, 1, adapted.Database.MaxOpenConns)
	assert.Zero(t, adapted.RateLimit.RequestsPerSecond)

	custom := &Config{Database: DatabaseConfig{ConnectionString: "/tmp/custom.db"}}
	assert.Equal(t, "/tmp/custom.db", AdaptConfigForServerless(custom, true).Database.ConnectionString)
}
