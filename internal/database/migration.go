package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// expectedTables lists the tables the reports read from
var expectedTables = []string{
	"products",
	"product_categories",
	"customers",
	"sales",
	"sale_items",
	"expenses",
}

// MigrationManager handles database migrations
type MigrationManager struct {
	db     *sql.DB
	logger *logrus.Logger
	backup bool
}

// NewMigrationManager creates a new migration manager over the embedded migrations
func NewMigrationManager(db *sql.DB, logger *logrus.Logger) *MigrationManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &MigrationManager{
		db:     db,
		logger: logger,
	}
}

// WithBackup makes Up and Rollback copy the database file first
func (m *MigrationManager) WithBackup(enabled bool) *MigrationManager {
	m.backup = enabled
	return m
}

// RunMigrations executes all pending migrations
func (m *MigrationManager) RunMigrations() error {
	m.logger.Info("Starting database migrations...")

	if m.backup {
		if err := m.createBackup(); err != nil {
			m.logger.WithError(err).Warn("Failed to create backup before migration")
		}
	}

	return m.withMigrate(func(mg *migrate.Migrate) error {
		currentVersion, dirty, err := mg.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("failed to get current migration version: %w", err)
		}

		if dirty {
			m.logger.Warn("Database is in dirty state, attempting to force version")
			if err := mg.Force(int(currentVersion)); err != nil {
				return fmt.Errorf("failed to force migration version: %w", err)
			}
		}

		m.logger.WithField("current_version", currentVersion).Info("Current migration version")

		if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		newVersion, _, err := mg.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("failed to get new migration version: %w", err)
		}

		m.logger.WithField("new_version", newVersion).Info("Migrations completed successfully")
		return nil
	})
}

// RollbackMigration rolls back the last migration
func (m *MigrationManager) RollbackMigration() error {
	m.logger.Info("Rolling back last migration...")

	if m.backup {
		if err := m.createBackup(); err != nil {
			m.logger.WithError(err).Warn("Failed to create backup before rollback")
		}
	}

	return m.withMigrate(func(mg *migrate.Migrate) error {
		currentVersion, _, err := mg.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				return fmt.Errorf("no migrations to rollback")
			}
			return fmt.Errorf("failed to get current migration version: %w", err)
		}

		m.logger.WithField("current_version", currentVersion).Info("Rolling back from version")

		if err := mg.Steps(-1); err != nil {
			return fmt.Errorf("failed to rollback migration: %w", err)
		}

		newVersion, _, err := mg.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("failed to get new migration version: %w", err)
		}

		m.logger.WithField("new_version", newVersion).Info("Rollback completed successfully")
		return nil
	})
}

// GetMigrationStatus returns the current migration status
func (m *MigrationManager) GetMigrationStatus() (*repositories.MigrationStatus, error) {
	status := &repositories.MigrationStatus{}

	err := m.withMigrate(func(mg *migrate.Migrate) error {
		version, dirty, err := mg.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get migration version: %w", err)
		}

		status.Version = version
		status.Dirty = dirty
		status.Applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return status, nil
}

// ValidateSchema checks that every table exists and foreign keys are enforced
func (m *MigrationManager) ValidateSchema() error {
	m.logger.Info("Validating database schema...")

	for _, table := range expectedTables {
		var count int
		query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`
		if err := m.db.QueryRow(query, table).Scan(&count); err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if count == 0 {
			return fmt.Errorf("expected table %s not found", table)
		}
	}

	var fkEnabled int
	if err := m.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		return fmt.Errorf("failed to check foreign key status: %w", err)
	}
	if fkEnabled != 1 {
		m.logger.Warn("Foreign keys are not enabled")
	}

	m.logger.Info("Schema validation completed successfully")
	return nil
}

// withMigrate runs fn against a migrate instance reading the embedded files. The
// instance is not closed: closing the sqlite3 driver would close the shared *sql.DB.
func (m *MigrationManager) withMigrate(fn func(mg *migrate.Migrate) error) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}
	defer source.Close()

	driver, err := sqlite3.WithInstance(m.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to initialize migrate: %w", err)
	}

	return fn(mg)
}

// createBackup copies the database file next to itself before schema changes
func (m *MigrationManager) createBackup() error {
	rows, err := m.db.Query("PRAGMA database_list")
	if err != nil {
		return fmt.Errorf("failed to query database list: %w", err)
	}

	var seq int
	var name, dbPath string
	if !rows.Next() {
		rows.Close()
		return fmt.Errorf("no database found")
	}
	err = rows.Scan(&seq, &name, &dbPath)
	rows.Close()
	if err != nil {
		return fmt.Errorf("failed to scan database path: %w", err)
	}

	if dbPath == "" || dbPath == ":memory:" {
		m.logger.Info("Skipping backup for in-memory database")
		return nil
	}

	backupPath := fmt.Sprintf("%s.backup_%s", dbPath, time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(filepath.Dir(backupPath), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := m.db.Exec("VACUUM INTO ?", backupPath); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	m.logger.WithField("backup_path", backupPath).Info("Database backup created")
	return nil
}
