package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	LogLevel    string
	Database    DatabaseConfig
	Redis       RedisConfig
	Reports     ReportsConfig
	RateLimit   RateLimitConfig
}

// RedisConfig holds the report cache connection. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// ReportsConfig holds report defaults
type ReportsConfig struct {
	// TopCount is the default ranking length; 0 returns every row
	TopCount int

	// Timezone names the IANA location used for calendar months and date parameters
	Timezone string
}

// RateLimitConfig holds API rate limiting. A zero rate disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Set up Viper
	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_CONNECTION_STRING", DefaultDatabasePath)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 1)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 1)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("DB_BACKUP_ENABLED", false)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REPORT_CACHE_TTL", "5m")
	viper.SetDefault("RATE_LIMIT_RPS", 20)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("REPORT_TOP_COUNT", 10)
	viper.SetDefault("REPORT_TIMEZONE", "UTC")

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		LogLevel:    viper.GetString("LOG_LEVEL"),
		Database: DatabaseConfig{
			ConnectionString: viper.GetString("DB_CONNECTION_STRING"),
			MaxOpenConns:     viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:     viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime:  viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:      viper.GetBool("DB_AUTO_MIGRATE"),
			BackupEnabled:    viper.GetBool("DB_BACKUP_ENABLED"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			CacheTTL: viper.GetDuration("REPORT_CACHE_TTL"),
		},
		Reports: ReportsConfig{
			TopCount: viper.GetInt("REPORT_TOP_COUNT"),
			Timezone: viper.GetString("REPORT_TIMEZONE"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("port cannot be empty")
	}

	if err := c.Database.Validate(); err != nil {
		return err
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Reports.TopCount < 0 {
		return fmt.Errorf("report top count cannot be negative")
	}

	if c.Redis.CacheTTL < 0 {
		return fmt.Errorf("report cache TTL cannot be negative")
	}

	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit values cannot be negative")
	}

	return nil
}

// Location returns the report time zone
func (c *Config) Location() (*time.Location, error) {
	name := c.Reports.Timezone
	if name == "" {
		name = "UTC"
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid report timezone %q: %w", name, err)
	}
	return location, nil
}

// IsProduction reports whether the environment is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// NewLogger builds the application logger: JSON in production and on Lambda, text
// otherwise.
func NewLogger(c *Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if c.IsProduction() || IsServerlessMode() {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
