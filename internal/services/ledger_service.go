package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/cache"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"
)

// ledgerService implements the LedgerService interface
type ledgerService struct {
	repos     *repositories.Repositories
	cache     *cache.ReportCache
	validator *validator.Validate
	logger    *logrus.Logger
}

// NewLedgerService creates a new ledger service instance. The cache may be nil.
func NewLedgerService(repos *repositories.Repositories, reportCache *cache.ReportCache, logger *logrus.Logger) LedgerService {
	if logger == nil {
		logger = logrus.New()
	}
	return &ledgerService{
		repos:     repos,
		cache:     reportCache,
		validator: validator.New(),
		logger:    logger,
	}
}

// RecordSale stores a sale. Item prices are copied from the products unless the
// request overrides them.
func (s *ledgerService) RecordSale(ctx context.Context, req *RecordSaleRequest) (*models.Sale, error) {
	if req == nil {
		return nil, fmt.Errorf("record sale request cannot be nil")
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	for _, amount := range []models.Amount{req.DiscountValue, req.TaxValue, req.Shipping} {
		if err := models.ValidateAmount(amount, "amount"); err != nil {
			return nil, err
		}
	}

	sale := models.NewSale(time.Unix(req.Timestamp, 0))
	if req.DiscountType != "" {
		sale.DiscountType = req.DiscountType
	}
	if req.TaxType != "" {
		sale.TaxType = req.TaxType
	}
	sale.DiscountValue = req.DiscountValue
	sale.TaxValue = req.TaxValue
	sale.Shipping = req.Shipping
	if req.Note != nil {
		sale.SetNote(*req.Note)
	}

	err := s.repos.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
		if req.CustomerID != nil {
			customer, err := s.repos.Customers.GetByID(ctx, *req.CustomerID)
			if err != nil {
				return fmt.Errorf("failed to get customer: %w", err)
			}
			sale.Customer = customer.Ref()
		}

		for _, item := range req.Items {
			product, err := s.repos.Products.GetByID(ctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("failed to get product: %w", err)
			}

			sale.AddItem(product, item.Quantity)
			line := &sale.SaleItems[len(sale.SaleItems)-1]
			if item.SalePrice != nil {
				line.SalePrice = *item.SalePrice
			}
			if item.CostPrice != nil {
				line.CostPrice = *item.CostPrice
			}
		}

		if err := s.repos.Sales.Create(ctx, sale); err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, "sale", sale.ID)
	return sale, nil
}

// DeleteSale removes a sale and its items
func (s *ledgerService) DeleteSale(ctx context.Context, id string) error {
	if err := s.repos.Sales.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}

	s.invalidate(ctx, "sale", id)
	return nil
}

// RecordExpense stores an expense
func (s *ledgerService) RecordExpense(ctx context.Context, req *RecordExpenseRequest) (*models.Expense, error) {
	if req == nil {
		return nil, fmt.Errorf("record expense request cannot be nil")
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := models.ValidateAmount(req.Cost, "cost"); err != nil {
		return nil, err
	}

	expense := models.NewExpense(models.SanitizeString(req.Name), req.Cost, time.Unix(req.Timestamp, 0))
	if req.Description != nil {
		expense.SetDescription(*req.Description)
	}

	if err := s.repos.Expenses.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.invalidate(ctx, "expense", expense.ID)
	return expense, nil
}

// DeleteExpense removes an expense
func (s *ledgerService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.repos.Expenses.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	s.invalidate(ctx, "expense", id)
	return nil
}

// RecordProduct adds a product to the catalog. Reports only see products through
// sales, so the cache is left alone.
func (s *ledgerService) RecordProduct(ctx context.Context, req *RecordProductRequest) (*models.Product, error) {
	if req == nil {
		return nil, fmt.Errorf("record product request cannot be nil")
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	categories := make([]string, 0, len(req.Categories))
	for _, category := range req.Categories {
		categories = append(categories, strings.TrimSpace(category))
	}

	product := models.NewProduct(models.SanitizeString(req.Name), req.SalePrice, req.CostPrice, categories...)
	product.Unit = req.Unit
	if req.Notes != nil {
		product.SetNotes(*req.Notes)
	}

	if err := s.repos.Products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// RecordCustomer adds a customer
func (s *ledgerService) RecordCustomer(ctx context.Context, req *RecordCustomerRequest) (*models.Customer, error) {
	if req == nil {
		return nil, fmt.Errorf("record customer request cannot be nil")
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	customer := models.NewCustomer(models.SanitizeString(req.Name))
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Street1 = req.Street1
	customer.Street2 = req.Street2
	customer.City = req.City
	customer.State = req.State
	customer.ZipCode = req.ZipCode
	customer.Country = req.Country

	if err := s.repos.Customers.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return customer, nil
}

// invalidate bumps the report cache version after a write
func (s *ledgerService) invalidate(ctx context.Context, entity, id string) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"entity": entity,
			"id":     id,
		}).Warn("Failed to invalidate report cache")
	}
}
