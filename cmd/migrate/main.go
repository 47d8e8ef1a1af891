package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/config"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/database"
)

func main() {
	var (
		dbPath  = flag.String("db", config.GetEnv("DB_CONNECTION_STRING", config.DefaultDatabasePath), "Database file path")
		action  = flag.String("action", "up", "Migration action: up, down, status, validate")
		backup  = flag.Bool("backup", false, "Copy the database aside before changing the schema")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Setup logger
	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	logger.WithFields(logrus.Fields{
		"db_path": absDBPath,
		"action":  *action,
	}).Info("Starting migration tool")

	// Migrations are applied explicitly below, never on connect
	connectionManager := database.NewConnectionManager(&database.ConnectionConfig{
		DatabasePath:  absDBPath,
		MaxOpenConns:  1,
		MaxIdleConns:  1,
		BackupEnabled: *backup,
		Logger:        logger,
	})

	var run func(*database.MigrationManager) error
	switch *action {
	case "up":
		run = func(m *database.MigrationManager) error { return m.RunMigrations() }
	case "down":
		run = func(m *database.MigrationManager) error { return m.RollbackMigration() }
	case "status":
		run = showMigrationStatus
	case "validate":
		run = validateSchema
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status, validate")
	}

	if err := withMigrations(connectionManager, run); err != nil {
		logger.WithError(err).WithField("action", *action).Fatal("Migration tool failed")
	}

	logger.Info("Migration tool completed successfully")
}

func withMigrations(cm *database.ConnectionManager, fn func(*database.MigrationManager) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := cm.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer cm.Close()

	return fn(cm.GetMigrationManager())
}

func showMigrationStatus(m *database.MigrationManager) error {
	status, err := m.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)

	return nil
}

func validateSchema(m *database.MigrationManager) error {
	if err := m.ValidateSchema(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	fmt.Println("Schema validation passed successfully")
	return nil
}
