package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/config"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/migration"
	"github.com/KarlaDampilag/dailysalesexpenses/pkg/server"
)

func main() {
	var (
		dbPath   = flag.String("db", "", "Database file path (defaults to DB_CONNECTION_STRING)")
		jsonPath = flag.String("json", "./export", "Directory holding products.json, customers.json, sales.json and expenses.json")
		action   = flag.String("action", "import", "Action: import, validate, check")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		dryRun   = flag.Bool("dry-run", false, "Import inside a transaction that is rolled back")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absJSONPath, err := filepath.Abs(*jsonPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute JSON path")
	}

	logger.WithFields(logrus.Fields{
		"json_path": absJSONPath,
		"action":    *action,
		"dry_run":   *dryRun,
	}).Info("Starting JSON import tool")

	switch *action {
	case "check":
		checkFiles(migration.NewJSONImporter(nil, absJSONPath, logger))
	case "validate":
		result, err := migration.NewJSONImporter(nil, absJSONPath, logger).Validate()
		if err != nil {
			logger.WithError(err).Fatal("Validation failed")
		}
		printResult(result)
		if len(result.Errors) > 0 {
			os.Exit(1)
		}
	case "import":
		if err := runImport(*dbPath, absJSONPath, *dryRun, *verbose); err != nil {
			logger.WithError(err).Fatal("Import failed")
		}
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: import, validate, check")
	}

	logger.Info("JSON import tool completed successfully")
}

func runImport(dbPath, jsonPath string, dryRun, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if dbPath != "" {
		cfg.Database.ConnectionString = dbPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	container, err := server.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	importer := container.JSONImporter(jsonPath)
	importer.SetDryRun(dryRun)

	result, err := importer.Import(ctx)
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

func checkFiles(importer *migration.JSONImporter) {
	found := importer.CheckFiles()
	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Export files:")
	for _, name := range names {
		status := "missing"
		if found[name] {
			status = "found"
		}
		fmt.Printf("  %-16s %s\n", name, status)
	}
}

func printResult(result *migration.ImportResult) {
	fmt.Println("Import Results:")
	if result.DryRun {
		fmt.Println("  (dry run, nothing was written)")
	}
	fmt.Printf("  Products:  %d\n", result.ProductsImported)
	fmt.Printf("  Customers: %d\n", result.CustomersImported)
	fmt.Printf("  Sales:     %d\n", result.SalesImported)
	fmt.Printf("  Expenses:  %d\n", result.ExpensesImported)
	fmt.Printf("  Skipped:   %d\n", result.Skipped)
	if result.Duration > 0 {
		fmt.Printf("  Duration:  %v\n", result.Duration)
	}

	for _, warning := range result.Warnings {
		fmt.Printf("  WARNING: %s\n", warning)
	}
	for _, e := range result.Errors {
		fmt.Printf("  ERROR: %s\n", e)
	}
}
