package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer represents a customer in the system
type Customer struct {
	ID        string    `json:"id" db:"id" validate:"required"`
	Name      string    `json:"name" db:"name" validate:"required,min=1,max=255"`
	Email     *string   `json:"email,omitempty" db:"email" validate:"omitempty,email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Street1   *string   `json:"street1,omitempty" db:"street1"`
	Street2   *string   `json:"street2,omitempty" db:"street2"`
	City      *string   `json:"city,omitempty" db:"city"`
	State     *string   `json:"state,omitempty" db:"state"`
	ZipCode   *string   `json:"zipCode,omitempty" db:"zip_code"`
	Country   *string   `json:"country,omitempty" db:"country"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CustomerRef is the customer as it appears on a sale
type CustomerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewCustomer creates a new customer with generated ID and timestamp
func NewCustomer(name string) *Customer {
	return &Customer{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
	}
}

// Validate validates the customer data
func (c *Customer) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("customer ID is required")
	}

	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("customer name is required")
	}

	if len(c.Name) > 255 {
		return fmt.Errorf("customer name cannot exceed 255 characters")
	}

	if c.Email != nil && *c.Email != "" {
		if !isValidEmail(*c.Email) {
			return fmt.Errorf("invalid email format: %s", *c.Email)
		}
	}

	return nil
}

// Ref returns the reference embedded into sales
func (c *Customer) Ref() *CustomerRef {
	return &CustomerRef{ID: c.ID, Name: c.Name}
}

// GetAddress joins the non-empty address parts
func (c *Customer) GetAddress() string {
	var parts []string
	for _, part := range []*string{c.Street1, c.Street2, c.City, c.State, c.ZipCode, c.Country} {
		if part != nil && strings.TrimSpace(*part) != "" {
			parts = append(parts, strings.TrimSpace(*part))
		}
	}
	return strings.Join(parts, ", ")
}

// isValidEmail performs basic email validation
func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
