package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// ConnectionConfig holds database connection configuration
type ConnectionConfig struct {
	DatabasePath    string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	BackupEnabled   bool
	Logger          *logrus.Logger
}

// DefaultConnectionConfig returns a default configuration
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		DatabasePath:    "./data/dailysales.db",
		MaxOpenConns:    1, // SQLite works best with single connection
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		AutoMigrate:     true,
		Logger:          logrus.New(),
	}
}

// ConnectionManager manages database connections
type ConnectionManager struct {
	config *ConnectionConfig
	db     *sql.DB
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(config *ConnectionConfig) *ConnectionManager {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	return &ConnectionManager{
		config: config,
	}
}

// Connect opens the database and, when AutoMigrate is set, brings the schema up to date
func (cm *ConnectionManager) Connect(ctx context.Context) error {
	if cm.db != nil {
		return fmt.Errorf("database connection already established")
	}

	db, err := Open(ctx, cm.config)
	if err != nil {
		return err
	}

	if cm.config.AutoMigrate {
		migrations := NewMigrationManager(db, cm.config.Logger).WithBackup(cm.config.BackupEnabled)
		if err := migrations.RunMigrations(); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	cm.db = db
	cm.config.Logger.WithField("db_path", cm.config.DatabasePath).Info("Database connection established")
	return nil
}

// GetDB returns the database connection
func (cm *ConnectionManager) GetDB() *sql.DB {
	return cm.db
}

// Close closes the database connection
func (cm *ConnectionManager) Close() error {
	if cm.db == nil {
		return nil
	}

	err := cm.db.Close()
	cm.db = nil

	if err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	cm.config.Logger.Info("Database connection closed")
	return nil
}

// Ping tests the database connection
func (cm *ConnectionManager) Ping(ctx context.Context) error {
	if cm.db == nil {
		return fmt.Errorf("database connection not established")
	}

	if err := cm.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// GetMigrationManager returns a migration manager for this connection
func (cm *ConnectionManager) GetMigrationManager() *MigrationManager {
	if cm.db == nil {
		return nil
	}

	return NewMigrationManager(cm.db, cm.config.Logger).WithBackup(cm.config.BackupEnabled)
}

// CheckHealth pings the database and checks that foreign keys are enforced
func (cm *ConnectionManager) CheckHealth(ctx context.Context) error {
	if err := cm.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var result int
	if err := cm.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}

	var fkEnabled int
	if err := cm.db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		return fmt.Errorf("failed to check foreign key status: %w", err)
	}

	if fkEnabled != 1 {
		return fmt.Errorf("foreign keys are not enabled")
	}

	return nil
}

// GetHealthStatus returns detailed health status
func (cm *ConnectionManager) GetHealthStatus(ctx context.Context) *repositories.HealthStatus {
	start := time.Now()
	err := cm.CheckHealth(ctx)

	status := &repositories.HealthStatus{
		Healthy:      err == nil,
		CheckedAt:    time.Now(),
		ResponseTime: time.Since(start),
		Details: map[string]string{
			"driver": "sqlite3",
			"path":   cm.config.DatabasePath,
		},
	}

	if err != nil {
		status.Message = err.Error()
	} else {
		stats := cm.db.Stats()
		status.Details["open_connections"] = fmt.Sprintf("%d", stats.OpenConnections)
		status.Details["in_use"] = fmt.Sprintf("%d", stats.InUse)
	}

	return status
}

// Open opens a SQLite database with foreign keys enforced and the pool configured.
// The parent directory is created when missing.
func Open(ctx context.Context, config *ConnectionConfig) (*sql.DB, error) {
	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
	}

	dbPath := config.DatabasePath
	if dbPath != ":memory:" {
		abs, err := filepath.Abs(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute database path: %w", err)
		}
		dbPath = abs

		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	logger.WithField("db_path", dbPath).Info("Initializing database")

	db, err := sql.Open("sqlite3", buildDSN(dbPath))
	if err != nil {
		return nil, repositories.ConnectionError(err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, repositories.ConnectionError(err)
	}

	maxOpen := config.MaxOpenConns
	if maxOpen < 1 {
		maxOpen = 1
	}
	maxIdle := config.MaxIdleConns
	if maxIdle < 1 {
		maxIdle = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	return db, nil
}

func buildDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)
}
