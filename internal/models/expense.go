package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Expense represents a business expense
type Expense struct {
	ID          string    `json:"id" db:"id"`
	Timestamp   int64     `json:"timestamp" db:"timestamp"`
	Cost        Amount    `json:"cost" db:"cost"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// NewExpense creates a new expense dated at the given business time
func NewExpense(name string, cost Amount, businessDate time.Time) *Expense {
	return &Expense{
		ID:        uuid.New().String(),
		Timestamp: businessDate.Unix(),
		Cost:      cost,
		Name:      name,
		CreatedAt: time.Now(),
	}
}

// UnixTimestamp returns the business date of the expense
func (e *Expense) UnixTimestamp() int64 {
	return e.Timestamp
}

// Validate validates the expense data
func (e *Expense) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("expense ID is required")
	}

	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("expense name is required")
	}

	if e.Timestamp <= 0 {
		return fmt.Errorf("expense timestamp is required")
	}

	if !e.Cost.IsSet() || !e.Cost.Valid() {
		return fmt.Errorf("invalid expense cost: %q", e.Cost)
	}

	return nil
}

// SetDescription sets the expense description
func (e *Expense) SetDescription(description string) {
	if strings.TrimSpace(description) == "" {
		e.Description = nil
	} else {
		e.Description = &description
	}
}

// GetDescription returns the expense description or empty string if nil
func (e *Expense) GetDescription() string {
	if e.Description == nil {
		return ""
	}
	return *e.Description
}
