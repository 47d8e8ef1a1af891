package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"
)

// Export file names, one JSON array per entity
const (
	ProductsFile  = "products.json"
	CustomersFile = "customers.json"
	SalesFile     = "sales.json"
	ExpensesFile  = "expenses.json"
)

var errDryRun = errors.New("dry run")

// ImportResult contains the outcome of an import
type ImportResult struct {
	ProductsImported  int           `json:"products_imported"`
	CustomersImported int           `json:"customers_imported"`
	SalesImported     int           `json:"sales_imported"`
	ExpensesImported  int           `json:"expenses_imported"`
	Skipped           int           `json:"skipped"`
	Errors            []string      `json:"errors"`
	Warnings          []string      `json:"warnings"`
	Duration          time.Duration `json:"duration"`
	DryRun            bool          `json:"dry_run"`
}

// Total returns the number of rows written
func (r *ImportResult) Total() int {
	return r.ProductsImported + r.CustomersImported + r.SalesImported + r.ExpensesImported
}

func (r *ImportResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *ImportResult) fail(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// ledgerExport is the decoded content of an export directory
type ledgerExport struct {
	Products  []*models.Product
	Customers []*models.Customer
	Sales     []*models.Sale
	Expenses  []*models.Expense
}

// JSONImporter loads a JSON export of the ledger into the repositories. Existing IDs
// are kept so sales keep pointing at their products and customers.
type JSONImporter struct {
	repos      *repositories.Repositories
	logger     *logrus.Logger
	dir        string
	dryRun     bool
	invalidate func(context.Context) error
}

// NewJSONImporter creates an importer reading the export files under dir
func NewJSONImporter(repos *repositories.Repositories, dir string, logger *logrus.Logger) *JSONImporter {
	if logger == nil {
		logger = logrus.New()
	}
	return &JSONImporter{
		repos:  repos,
		logger: logger,
		dir:    dir,
	}
}

// SetDryRun makes Import roll back everything it wrote
func (m *JSONImporter) SetDryRun(dryRun bool) {
	m.dryRun = dryRun
}

// OnImported registers a hook run after a committed import, typically a cache bump
func (m *JSONImporter) OnImported(fn func(context.Context) error) {
	m.invalidate = fn
}

// CheckFiles lists which export files are present. Missing files are imported as empty.
func (m *JSONImporter) CheckFiles() map[string]bool {
	found := make(map[string]bool)
	for _, name := range []string{ProductsFile, CustomersFile, SalesFile, ExpensesFile} {
		_, err := os.Stat(filepath.Join(m.dir, name))
		found[name] = err == nil
	}
	return found
}

// Validate decodes every export file and checks each record without writing anything
func (m *JSONImporter) Validate() (*ImportResult, error) {
	result := &ImportResult{DryRun: true}
	export, err := m.load()
	if err != nil {
		return nil, err
	}

	products := make(map[string]bool, len(export.Products))
	for _, p := range export.Products {
		products[p.ID] = true
		if err := p.Validate(); err != nil {
			result.fail("product %s: %v", p.ID, err)
		}
	}
	for _, c := range export.Customers {
		if err := c.Validate(); err != nil {
			result.fail("customer %s: %v", c.ID, err)
		}
	}
	for _, s := range export.Sales {
		prepareSale(s)
		if err := s.Validate(); err != nil {
			result.fail("sale %s: %v", s.ID, err)
			continue
		}
		for _, item := range s.SaleItems {
			if !products[item.Product.ID] {
				result.warn("sale %s: product %s is not in the export", s.ID, item.Product.ID)
			}
		}
	}
	for _, e := range export.Expenses {
		if err := e.Validate(); err != nil {
			result.fail("expense %s: %v", e.ID, err)
		}
	}

	return result, nil
}

// Import writes the export in a single transaction. Records whose ID already exists are
// skipped; invalid records are reported and skipped without aborting the import.
func (m *JSONImporter) Import(ctx context.Context) (*ImportResult, error) {
	start := time.Now()
	result := &ImportResult{DryRun: m.dryRun}

	export, err := m.load()
	if err != nil {
		return nil, err
	}

	m.logger.WithFields(logrus.Fields{
		"dir":       m.dir,
		"products":  len(export.Products),
		"customers": len(export.Customers),
		"sales":     len(export.Sales),
		"expenses":  len(export.Expenses),
		"dry_run":   m.dryRun,
	}).Info("Starting JSON import")

	err = m.repos.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
		if err := m.importProducts(ctx, export.Products, result); err != nil {
			return err
		}
		if err := m.importCustomers(ctx, export.Customers, result); err != nil {
			return err
		}
		if err := m.importSales(ctx, export.Sales, result); err != nil {
			return err
		}
		if err := m.importExpenses(ctx, export.Expenses, result); err != nil {
			return err
		}
		if m.dryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return nil, fmt.Errorf("import failed: %w", err)
	}

	if !m.dryRun && m.invalidate != nil && result.Total() > 0 {
		if err := m.invalidate(ctx); err != nil {
			result.warn("cache invalidation failed: %v", err)
		}
	}

	result.Duration = time.Since(start)
	m.logger.WithFields(logrus.Fields{
		"imported": result.Total(),
		"skipped":  result.Skipped,
		"errors":   len(result.Errors),
		"warnings": len(result.Warnings),
		"duration": result.Duration,
	}).Info("JSON import completed")

	return result, nil
}

func (m *JSONImporter) importProducts(ctx context.Context, products []*models.Product, result *ImportResult) error {
	for _, product := range products {
		write, err := m.shouldWrite(ctx, m.repos.Products, product.ID, result)
		if err != nil {
			return err
		}
		if !write {
			continue
		}
		if product.CreatedAt.IsZero() {
			product.CreatedAt = time.Now()
		}
		if err := m.repos.Products.Create(ctx, product); err != nil {
			if !repositories.IsValidation(err) {
				return err
			}
			result.fail("product %s: %v", product.ID, err)
			continue
		}
		result.ProductsImported++
	}
	return nil
}

func (m *JSONImporter) importCustomers(ctx context.Context, customers []*models.Customer, result *ImportResult) error {
	for _, customer := range customers {
		write, err := m.shouldWrite(ctx, m.repos.Customers, customer.ID, result)
		if err != nil {
			return err
		}
		if !write {
			continue
		}
		if customer.CreatedAt.IsZero() {
			customer.CreatedAt = time.Now()
		}
		if err := m.repos.Customers.Create(ctx, customer); err != nil {
			if !repositories.IsValidation(err) {
				return err
			}
			result.fail("customer %s: %v", customer.ID, err)
			continue
		}
		result.CustomersImported++
	}
	return nil
}

func (m *JSONImporter) importSales(ctx context.Context, sales []*models.Sale, result *ImportResult) error {
	for _, sale := range sales {
		write, err := m.shouldWrite(ctx, m.repos.Sales, sale.ID, result)
		if err != nil {
			return err
		}
		if !write {
			continue
		}
		prepareSale(sale)

		if sale.Customer != nil {
			exists, err := m.repos.Customers.Exists(ctx, sale.Customer.ID)
			if err != nil {
				return err
			}
			if !exists {
				result.warn("sale %s: customer %s not found, imported without customer", sale.ID, sale.Customer.ID)
				sale.Customer = nil
			}
		}

		if missing, err := m.resolveItems(ctx, sale); err != nil {
			return err
		} else if missing != "" {
			result.fail("sale %s: product %s not found", sale.ID, missing)
			continue
		}

		if err := m.repos.Sales.Create(ctx, sale); err != nil {
			if !repositories.IsValidation(err) {
				return err
			}
			result.fail("sale %s: %v", sale.ID, err)
			continue
		}
		result.SalesImported++
	}
	return nil
}

// resolveItems loads each item's product and fills missing price snapshots from it.
// It returns the ID of the first product that does not exist.
func (m *JSONImporter) resolveItems(ctx context.Context, sale *models.Sale) (string, error) {
	for i := range sale.SaleItems {
		item := &sale.SaleItems[i]
		if item.Product == nil || item.Product.ID == "" {
			continue
		}
		product, err := m.repos.Products.GetByID(ctx, item.Product.ID)
		if repositories.IsNotFound(err) {
			return item.Product.ID, nil
		}
		if err != nil {
			return "", err
		}
		item.Product = product
		if !item.SalePrice.IsSet() {
			item.SalePrice = product.SalePrice
		}
		if !item.CostPrice.IsSet() {
			item.CostPrice = product.CostPrice
		}
	}
	return "", nil
}

func (m *JSONImporter) importExpenses(ctx context.Context, expenses []*models.Expense, result *ImportResult) error {
	for _, expense := range expenses {
		write, err := m.shouldWrite(ctx, m.repos.Expenses, expense.ID, result)
		if err != nil {
			return err
		}
		if !write {
			continue
		}
		if expense.CreatedAt.IsZero() {
			expense.CreatedAt = time.Now()
		}
		if err := m.repos.Expenses.Create(ctx, expense); err != nil {
			if !repositories.IsValidation(err) {
				return err
			}
			result.fail("expense %s: %v", expense.ID, err)
			continue
		}
		result.ExpensesImported++
	}
	return nil
}

type existenceChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// shouldWrite reports whether a record is new. Records without an ID are reported as
// errors; existing ones are counted as skipped.
func (m *JSONImporter) shouldWrite(ctx context.Context, repo existenceChecker, id string, result *ImportResult) (bool, error) {
	if id == "" {
		result.fail("record without id")
		return false, nil
	}
	exists, err := repo.Exists(ctx, id)
	if err != nil {
		return false, err
	}
	if exists {
		result.Skipped++
		m.logger.WithField("id", id).Debug("Record already exists, skipping")
		return false, nil
	}
	return true, nil
}

// prepareSale fills the defaults the export leaves out
func prepareSale(sale *models.Sale) {
	if sale.DiscountType == "" {
		sale.DiscountType = models.DeductionFlat
	}
	if sale.TaxType == "" {
		sale.TaxType = models.DeductionPercentage
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}
	if sale.Customer != nil && sale.Customer.ID == "" {
		sale.Customer = nil
	}
	for i := range sale.SaleItems {
		if sale.SaleItems[i].ID == "" {
			sale.SaleItems[i].ID = uuid.New().String()
		}
	}
}

func (m *JSONImporter) load() (*ledgerExport, error) {
	if info, err := os.Stat(m.dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("export directory not found: %s", m.dir)
	}

	export := &ledgerExport{}
	if err := m.readFile(ProductsFile, &export.Products); err != nil {
		return nil, err
	}
	if err := m.readFile(CustomersFile, &export.Customers); err != nil {
		return nil, err
	}
	if err := m.readFile(SalesFile, &export.Sales); err != nil {
		return nil, err
	}
	if err := m.readFile(ExpensesFile, &export.Expenses); err != nil {
		return nil, err
	}
	return export, nil
}

func (m *JSONImporter) readFile(name string, dest interface{}) error {
	path := filepath.Join(m.dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		m.logger.WithField("file", name).Debug("Export file not present")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}
