package config

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/database"
)

// DefaultDatabasePath is the SQLite file used when DB_CONNECTION_STRING is unset
const DefaultDatabasePath = "./data/dailysales.db"

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	AutoMigrate      bool
	BackupEnabled    bool
}

// Validate validates the database configuration
func (c *DatabaseConfig) Validate() error {
	if c.ConnectionString == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if c.MaxOpenConns < 1 {
		return fmt.Errorf("max open connections must be at least 1")
	}

	if c.MaxIdleConns < 0 {
		return fmt.Errorf("max idle connections cannot be negative")
	}

	if c.ConnMaxLifetime < 0 {
		return fmt.Errorf("connection max lifetime cannot be negative")
	}

	return nil
}

// ToConnectionConfig converts DatabaseConfig to database.ConnectionConfig
func (c *DatabaseConfig) ToConnectionConfig(logger *logrus.Logger) *database.ConnectionConfig {
	return &database.ConnectionConfig{
		DatabasePath:    c.ConnectionString,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		AutoMigrate:     c.AutoMigrate,
		BackupEnabled:   c.BackupEnabled,
		Logger:          logger,
	}
}
