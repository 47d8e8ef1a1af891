package repositories

import (
	"context"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
)

// BaseRepository defines the operations shared by every repository
type BaseRepository[T any] interface {
	// Create stores a new entity
	Create(ctx context.Context, entity *T) error

	// GetByID retrieves an entity by its ID
	GetByID(ctx context.Context, id string) (*T, error)

	// List retrieves every entity
	List(ctx context.Context) ([]*T, error)

	// Exists checks if an entity with the given ID exists
	Exists(ctx context.Context, id string) (bool, error)
}

// ProductRepository manages the product catalog and its category memberships
type ProductRepository interface {
	BaseRepository[models.Product]
}

// CustomerRepository manages customers
type CustomerRepository interface {
	BaseRepository[models.Customer]
}

// SaleRepository manages sales together with their items
type SaleRepository interface {
	BaseRepository[models.Sale]

	// Delete removes a sale and its items
	Delete(ctx context.Context, id string) error
}

// ExpenseRepository manages expenses
type ExpenseRepository interface {
	BaseRepository[models.Expense]

	// Delete removes an expense
	Delete(ctx context.Context, id string) error
}

// SnapshotReader loads every sale and expense in one consistent read
type SnapshotReader interface {
	LoadSnapshot(ctx context.Context) (*models.Snapshot, error)
}
