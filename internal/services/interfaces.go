package services

import (
	"context"
	"errors"
	"time"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
)

// ErrInvalidRange is returned when a report range ends before it starts
var ErrInvalidRange = errors.New("end date must not be before start date")

// ReportService computes the figures of the reports page from a consistent snapshot
type ReportService interface {
	// Summary returns profit, expenses, net and units sold for the range
	Summary(ctx context.Context, req *ReportRequest) (*models.RangeSummary, error)

	// MonthlyTrend returns one profit/expense bucket per calendar month of the range
	MonthlyTrend(ctx context.Context, req *ReportRequest) ([]models.TrendBucket, error)

	// Rankings
	TopProducts(ctx context.Context, req *ReportRequest) ([]models.ProductSales, error)
	TopCategories(ctx context.Context, req *ReportRequest) ([]models.CategorySales, error)
	TopCustomers(ctx context.Context, req *ReportRequest) ([]models.CustomerSales, error)

	// Dashboard computes every figure above from a single snapshot
	Dashboard(ctx context.Context, req *ReportRequest) (*models.Dashboard, error)

	// SaleValuation returns the subtotal/total/profit breakdown of one sale
	SaleValuation(ctx context.Context, saleID string) (*models.SaleValuation, error)

	// DefaultRange returns the window used when a request names no dates
	DefaultRange(now time.Time) (time.Time, time.Time)
}

// LedgerService records the sales, expenses, products and customers reports read
type LedgerService interface {
	RecordSale(ctx context.Context, req *RecordSaleRequest) (*models.Sale, error)
	DeleteSale(ctx context.Context, id string) error
	RecordExpense(ctx context.Context, req *RecordExpenseRequest) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	RecordProduct(ctx context.Context, req *RecordProductRequest) (*models.Product, error)
	RecordCustomer(ctx context.Context, req *RecordCustomerRequest) (*models.Customer, error)
}

// Request types

// ReportRequest names an inclusive date range and, for rankings, a row limit. Zero
// dates select the default range; a zero count selects the configured default.
type ReportRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int       `json:"count" validate:"min=0,max=1000"`
}

type RecordSaleRequest struct {
	Timestamp     int64                   `json:"timestamp" validate:"required,gt=0"`
	CustomerID    *string                 `json:"customerId,omitempty" validate:"omitempty,min=1"`
	Items         []RecordSaleItemRequest `json:"saleItems" validate:"required,min=1,dive"`
	DiscountType  models.DeductionType    `json:"discountType,omitempty" validate:"omitempty,oneof=FLAT PERCENTAGE"`
	DiscountValue models.Amount           `json:"discountValue,omitempty"`
	TaxType       models.DeductionType    `json:"taxType,omitempty" validate:"omitempty,oneof=FLAT PERCENTAGE"`
	TaxValue      models.Amount           `json:"taxValue,omitempty"`
	Shipping      models.Amount           `json:"shipping,omitempty"`
	Note          *string                 `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// RecordSaleItemRequest names a product and quantity. Prices default to the product's
// current prices; when given they override the snapshot.
type RecordSaleItemRequest struct {
	ProductID string         `json:"productId" validate:"required"`
	Quantity  int            `json:"quantity" validate:"required,min=1"`
	SalePrice *models.Amount `json:"salePrice,omitempty"`
	CostPrice *models.Amount `json:"costPrice,omitempty"`
}

type RecordExpenseRequest struct {
	Timestamp   int64         `json:"timestamp" validate:"required,gt=0"`
	Name        string        `json:"name" validate:"required,min=1,max=255"`
	Cost        models.Amount `json:"cost" validate:"required"`
	Description *string       `json:"description,omitempty" validate:"omitempty,max=1000"`
}

type RecordProductRequest struct {
	Name       string        `json:"name" validate:"required,min=1,max=255"`
	Unit       *string       `json:"unit,omitempty" validate:"omitempty,max=50"`
	SalePrice  models.Amount `json:"salePrice"`
	CostPrice  models.Amount `json:"costPrice,omitempty"`
	Categories []string      `json:"categories,omitempty" validate:"omitempty,dive,required,max=100"`
	Notes      *string       `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type RecordCustomerRequest struct {
	Name    string  `json:"name" validate:"required,min=1,max=255"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Street1 *string `json:"street1,omitempty"`
	Street2 *string `json:"street2,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	ZipCode *string `json:"zipCode,omitempty"`
	Country *string `json:"country,omitempty"`
}
