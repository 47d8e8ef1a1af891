package migration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/database"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories/sqlite"
)

const (
	productsJSON = `[
		{"id": "p-ube", "name": "Ube Cake", "salePrice": "100", "costPrice": 60, "categories": ["Cakes"]},
		{"id": "p-pan", "name": "Pandesal", "salePrice": 5, "categories": []}
	]`
	customersJSON = `[
		{"id": "c-ana", "name": "Ana", "email": "ana@example.com"}
	]`
	salesJSON = `[
		{
			"id": "s-1", "timestamp": 1673341200,
			"customer": {"id": "c-ana", "name": "Ana"},
			"saleItems": [{"product": {"id": "p-ube"}, "salePrice": "90", "costPrice": "60", "quantity": 2}],
			"discountType": "FLAT", "discountValue": "10", "taxType": "PERCENTAGE", "taxValue": "12", "shipping": "50"
		},
		{
			"id": "s-2", "timestamp": 1673427600,
			"customer": {"id": "c-ghost", "name": "Ghost"},
			"saleItems": [{"product": {"id": "p-pan"}, "quantity": 10}]
		},
		{
			"id": "s-3", "timestamp": 1673427600,
			"saleItems": [{"product": {"id": "p-missing"}, "quantity": 1}]
		}
	]`
	expensesJSON = `[
		{"id": "e-1", "timestamp": 1673341200, "name": "Flour", "cost": "250.50"},
		{"id": "e-2", "timestamp": 1673341200, "name": "", "cost": "10"}
	]`
)

func writeExport(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func fullExport(t *testing.T) string {
	return writeExport(t, map[string]string{
		ProductsFile:  productsJSON,
		CustomersFile: customersJSON,
		SalesFile:     salesJSON,
		ExpensesFile:  expensesJSON,
	})
}

func setupRepositories(t *testing.T) (*repositories.Repositories, *logrus.Logger) {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	config := database.DefaultConnectionConfig()
	config.DatabasePath = filepath.Join(t.TempDir(), "import.db")
	config.Logger = logger

	db, err := database.Open(context.Background(), config)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrationManager(db, logger).RunMigrations())
	return sqlite.NewRepositories(db, logger), logger
}

func TestJSONImporter_Import(t *testing.T) {
	repos, logger := setupRepositories(t)
	ctx := context.Background()

	importer := NewJSONImporter(repos, fullExport(t), logger)
	bumps := 0
	importer.OnImported(func(context.Context) error {
		bumps++
		return nil
	})

	result, err := importer.Import(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, result.ProductsImported)
	assert.Equal(t, 1, result.CustomersImported)
	assert.Equal(t, 2, result.SalesImported)
	assert.Equal(t, 1, result.ExpensesImported)
	assert.Equal(t, 0, result.Skipped)
	assert.Len(t, result.Errors, 2, "unknown product and blank expense name")
	assert.Len(t, result.Warnings, 1, "unknown customer")
	assert.Equal(t, 1, bumps)

	first, err := repos.Sales.GetByID(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, first.Customer)
	assert.Equal(t, "c-ana", first.Customer.ID)
	require.Len(t, first.SaleItems, 1)
	assert.Equal(t, models.Amount("90"), first.SaleItems[0].SalePrice)
	assert.Equal(t, 2, first.SaleItems[0].Quantity)

	second, err := repos.Sales.GetByID(ctx, "s-2")
	require.NoError(t, err)
	assert.Nil(t, second.Customer)
	assert.Equal(t, models.DeductionFlat, second.DiscountType)
	assert.Equal(t, models.DeductionPercentage, second.TaxType)
	require.Len(t, second.SaleItems, 1)
	assert.Equal(t, models.Amount("5"), second.SaleItems[0].SalePrice, "price snapshot taken from the product")

	exists, err := repos.Sales.Exists(ctx, "s-3")
	require.NoError(t, err)
	assert.False(t, exists)

	t.Run("re-import skips existing records", func(t *testing.T) {
		again, err := importer.Import(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, again.Total())
		assert.Equal(t, 6, again.Skipped)
		assert.Equal(t, 1, bumps, "nothing written, nothing invalidated")
	})
}

func TestJSONImporter_DryRun(t *testing.T) {
	repos, logger := setupRepositories(t)
	ctx := context.Background()

	importer := NewJSONImporter(repos, fullExport(t), logger)
	importer.SetDryRun(true)
	importer.OnImported(func(context.Context) error {
		t.Fatal("dry run must not invalidate")
		return nil
	})

	result, err := importer.Import(ctx)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 2, result.SalesImported)

	products, err := repos.Products.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	sales, err := repos.Sales.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestJSONImporter_PartialExport(t *testing.T) {
	repos, logger := setupRepositories(t)

	dir := writeExport(t, map[string]string{ExpensesFile: expensesJSON})
	importer := NewJSONImporter(repos, dir, logger)

	assert.Equal(t, map[string]bool{
		ProductsFile:  false,
		CustomersFile: false,
		SalesFile:     false,
		ExpensesFile:  true,
	}, importer.CheckFiles())

	result, err := importer.Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExpensesImported)
	assert.Equal(t, 1, result.Total())
}

func TestJSONImporter_Validate(t *testing.T) {
	importer := NewJSONImporter(nil, fullExport(t), nil)

	result, err := importer.Validate()
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Len(t, result.Errors, 1, "blank expense name")
	assert.Len(t, result.Warnings, 1, "product missing from the export")
}

func TestJSONImporter_LoadErrors(t *testing.T) {
	tests := []struct {
		name string
		dir  func(t *testing.T) string
	}{
		{
			name: "missing directory",
			dir: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope")
			},
		},
		{
			name: "malformed file",
			dir: func(t *testing.T) string {
				return writeExport(t, map[string]string{SalesFile: `[{"id": `})
			},
		},
		{
			name: "invalid amount",
			dir: func(t *testing.T) string {
				return writeExport(t, map[string]string{ExpensesFile: `[{"id": "e", "cost": true}]`})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			importer := NewJSONImporter(nil, tt.dir(t), nil)

			_, err := importer.Validate()
			assert.Error(t, err)

			_, err = importer.Import(context.Background())
			assert.Error(t, err)
		})
	}
}
