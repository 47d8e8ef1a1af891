package repositories

import (
	"context"
)

// Transaction represents a database transaction that can be used across multiple repositories
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// TransactionManager manages database transactions
type TransactionManager interface {
	// BeginTransaction starts a new transaction
	BeginTransaction(ctx context.Context) (Transaction, error)

	// WithTransaction executes a function within a transaction. Repositories called
	// with the context passed to fn run their statements inside the transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repositories groups every repository over one database
type Repositories struct {
	Products     ProductRepository
	Customers    CustomerRepository
	Sales        SaleRepository
	Expenses     ExpenseRepository
	Snapshots    SnapshotReader
	Transactions TransactionManager
}
