package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog
type Product struct {
	ID         string    `json:"id" db:"id" validate:"required"`
	Name       string    `json:"name" db:"name" validate:"required,min=1,max=255"`
	Unit       *string   `json:"unit,omitempty" db:"unit"`
	SalePrice  Amount    `json:"salePrice" db:"sale_price"`
	CostPrice  Amount    `json:"costPrice,omitempty" db:"cost_price"`
	Categories []string  `json:"categories"`
	Notes      *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// NewProduct creates a new product with generated ID and timestamp
func NewProduct(name string, salePrice, costPrice Amount, categories ...string) *Product {
	return &Product{
		ID:         uuid.New().String(),
		Name:       name,
		SalePrice:  salePrice,
		CostPrice:  costPrice,
		Categories: categories,
		CreatedAt:  time.Now(),
	}
}

// Validate validates the product data
func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product ID is required")
	}

	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}

	if len(p.Name) > 255 {
		return fmt.Errorf("product name cannot exceed 255 characters")
	}

	if !p.SalePrice.Valid() {
		return fmt.Errorf("invalid sale price: %s", p.SalePrice)
	}

	if !p.CostPrice.Valid() {
		return fmt.Errorf("invalid cost price: %s", p.CostPrice)
	}

	for _, category := range p.Categories {
		if strings.TrimSpace(category) == "" {
			return fmt.Errorf("category names cannot be blank")
		}
	}

	return nil
}

// CategoryList returns the product categories, never nil
func (p *Product) CategoryList() []string {
	if p == nil || p.Categories == nil {
		return []string{}
	}
	return p.Categories
}

// HasCategory reports whether the product belongs to the named category
func (p *Product) HasCategory(name string) bool {
	for _, category := range p.CategoryList() {
		if category == name {
			return true
		}
	}
	return false
}

// SetNotes sets the product notes
func (p *Product) SetNotes(notes string) {
	if strings.TrimSpace(notes) == "" {
		p.Notes = nil
	} else {
		p.Notes = &notes
	}
}
