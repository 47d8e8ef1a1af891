package sqlite

import (
	"database/sql"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"

	"github.com/sirupsen/logrus"
)

// NewRepositories wires every SQLite repository over one database
func NewRepositories(db *sql.DB, logger *logrus.Logger) *repositories.Repositories {
	if logger == nil {
		logger = logrus.New()
	}
	return &repositories.Repositories{
		Products:     NewProductRepository(db, logger),
		Customers:    NewCustomerRepository(db, logger),
		Sales:        NewSaleRepository(db, logger),
		Expenses:     NewExpenseRepository(db, logger),
		Snapshots:    NewSnapshotRepository(db, logger),
		Transactions: NewSQLiteTransactionManager(db, logger),
	}
}
