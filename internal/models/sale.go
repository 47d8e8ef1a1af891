package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeductionType selects how a discount or tax value is applied
type DeductionType string

const (
	DeductionFlat       DeductionType = "FLAT"
	DeductionPercentage DeductionType = "PERCENTAGE"
)

// IsValid reports whether the type is one of the two supported modes
func (d DeductionType) IsValid() bool {
	return d == DeductionFlat || d == DeductionPercentage
}

// SaleItem is one line of a sale. SalePrice and CostPrice are snapshots taken when the
// sale was recorded and are independent of the product's current prices.
type SaleItem struct {
	ID        string   `json:"id,omitempty" db:"id"`
	Product   *Product `json:"product"`
	SalePrice Amount   `json:"salePrice" db:"sale_price"`
	CostPrice Amount   `json:"costPrice,omitempty" db:"cost_price"`
	Quantity  int      `json:"quantity" db:"quantity"`
}

// Revenue returns quantity times the snapshot sale price, unrounded
func (si SaleItem) Revenue() float64 {
	return float64(si.Quantity) * si.SalePrice.Float64()
}

// Sale represents a recorded sale
type Sale struct {
	ID            string        `json:"id" db:"id"`
	Timestamp     int64         `json:"timestamp" db:"timestamp"`
	Customer      *CustomerRef  `json:"customer,omitempty"`
	SaleItems     []SaleItem    `json:"saleItems"`
	DiscountType  DeductionType `json:"discountType" db:"discount_type"`
	DiscountValue Amount        `json:"discountValue,omitempty" db:"discount_value"`
	TaxType       DeductionType `json:"taxType" db:"tax_type"`
	TaxValue      Amount        `json:"taxValue,omitempty" db:"tax_value"`
	Shipping      Amount        `json:"shipping,omitempty" db:"shipping"`
	Note          *string       `json:"note,omitempty" db:"note"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
}

// NewSale creates a new sale dated at the given business time
func NewSale(businessDate time.Time) *Sale {
	return &Sale{
		ID:           uuid.New().String(),
		Timestamp:    businessDate.Unix(),
		DiscountType: DeductionFlat,
		TaxType:      DeductionPercentage,
		CreatedAt:    time.Now(),
	}
}

// UnixTimestamp returns the business date of the sale
func (s *Sale) UnixTimestamp() int64 {
	return s.Timestamp
}

// Date returns the business date as a time in the given location
func (s *Sale) Date(loc *time.Location) time.Time {
	return time.Unix(s.Timestamp, 0).In(loc)
}

// AddItem appends a line, snapshotting the product's current prices
func (s *Sale) AddItem(product *Product, quantity int) {
	s.SaleItems = append(s.SaleItems, SaleItem{
		ID:        uuid.New().String(),
		Product:   product,
		SalePrice: product.SalePrice,
		CostPrice: product.CostPrice,
		Quantity:  quantity,
	})
}

// Units returns the number of units across all lines
func (s *Sale) Units() int {
	units := 0
	for _, item := range s.SaleItems {
		units += item.Quantity
	}
	return units
}

// Validate validates the sale data. Valuation itself never validates; this runs at the
// boundary before a sale is stored.
func (s *Sale) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("sale ID is required")
	}

	if s.Timestamp <= 0 {
		return fmt.Errorf("sale timestamp is required")
	}

	if len(s.SaleItems) == 0 {
		return fmt.Errorf("sale must have at least one item")
	}

	if !s.DiscountType.IsValid() {
		return fmt.Errorf("invalid discount type: %s", s.DiscountType)
	}

	if !s.TaxType.IsValid() {
		return fmt.Errorf("invalid tax type: %s", s.TaxType)
	}

	for name, amount := range map[string]Amount{
		"discount value": s.DiscountValue,
		"tax value":      s.TaxValue,
		"shipping":       s.Shipping,
	} {
		if !amount.Valid() {
			return fmt.Errorf("invalid %s: %s", name, amount)
		}
	}

	for i, item := range s.SaleItems {
		if item.Product == nil || item.Product.ID == "" {
			return fmt.Errorf("sale item %d: product is required", i+1)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("sale item %d: quantity must be greater than 0", i+1)
		}
		if !item.SalePrice.Valid() || !item.CostPrice.Valid() {
			return fmt.Errorf("sale item %d: invalid price", i+1)
		}
	}

	return nil
}

// SetNote sets the sale note
func (s *Sale) SetNote(note string) {
	if strings.TrimSpace(note) == "" {
		s.Note = nil
	} else {
		s.Note = &note
	}
}

// GetNote returns the sale note or empty string if nil
func (s *Sale) GetNote() string {
	if s.Note == nil {
		return ""
	}
	return *s.Note
}
