package models

import (
	"time"
)

// Common constants
const (
	// TrendLabelLayout formats a trend bucket label as MM-YYYY
	TrendLabelLayout = "01-2006"

	// DefaultTopCount is the number of ranked rows shown on the reports page
	DefaultTopCount = 10
)

// SaleValuation is the computed breakdown of a single sale
type SaleValuation struct {
	SaleID            string  `json:"sale_id"`
	Subtotal          float64 `json:"subtotal"`
	GrossProfit       float64 `json:"gross_profit"`
	DiscountDeduction float64 `json:"discount_deduction"`
	TaxAddition       float64 `json:"tax_addition"`
	Shipping          float64 `json:"shipping"`
	Total             float64 `json:"total"`
	Profit            float64 `json:"profit"`
}

// RangeSummary represents aggregated figures for a date range
type RangeSummary struct {
	StartDate int64   `json:"start_date"`
	EndDate   int64   `json:"end_date"`
	Profit    float64 `json:"profit"`
	Expenses  float64 `json:"expenses"`
	Net       float64 `json:"net"`
	UnitsSold int     `json:"units_sold"`
}

// TrendBucket is one calendar month of a profit/expense series
type TrendBucket struct {
	DateName string  `json:"dateName"`
	Profit   float64 `json:"profit"`
	Expenses float64 `json:"expenses"`
}

// ProductSales represents product sales data for reporting
type ProductSales struct {
	Product      *Product `json:"product"`
	QuantitySold int      `json:"quantitySold"`
	Revenue      float64  `json:"revenue"`
}

// CategorySales represents category sales data for reporting
type CategorySales struct {
	Category     string  `json:"category"`
	QuantitySold int     `json:"quantitySold"`
	Revenue      float64 `json:"revenue"`
}

// CustomerSales represents customer sales data for reporting
type CustomerSales struct {
	Customer     *CustomerRef `json:"customer"`
	Transactions int          `json:"transactions"`
	Units        int          `json:"units"`
	Revenue      float64      `json:"revenue"`
	Profit       float64      `json:"profit"`
}

// Dashboard bundles every figure of the reports page, computed from one snapshot
type Dashboard struct {
	Summary       RangeSummary    `json:"summary"`
	Monthly       []TrendBucket   `json:"monthly"`
	TopProducts   []ProductSales  `json:"top_products"`
	TopCategories []CategorySales `json:"top_categories"`
	TopCustomers  []CustomerSales `json:"top_customers"`
}

// Snapshot is a consistent read of every sale and expense
type Snapshot struct {
	Sales    []Sale    `json:"sales"`
	Expenses []Expense `json:"expenses"`
	ReadAt   time.Time `json:"read_at"`
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return ve.Message
}

// HealthCheck represents system health status
type HealthCheck struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}
