package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"

	"github.com/sirupsen/logrus"
)

// SnapshotRepository reads every sale and expense inside one transaction, so a report
// never mixes data from before and after a concurrent write
type SnapshotRepository struct {
	db       *sql.DB
	sales    *SaleRepository
	expenses *ExpenseRepository
	logger   *logrus.Logger
}

// NewSnapshotRepository creates a new SQLite snapshot reader
func NewSnapshotRepository(db *sql.DB, logger *logrus.Logger) repositories.SnapshotReader {
	if logger == nil {
		logger = logrus.New()
	}
	return &SnapshotRepository{
		db:       db,
		sales:    newSaleRepository(db, logger),
		expenses: newExpenseRepository(db, logger),
		logger:   logger,
	}
}

// LoadSnapshot implements repositories.SnapshotReader
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	start := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, beginError(ctx, err)
	}
	// Read-only: rollback just releases the read lock.
	defer tx.Rollback()

	txCtx := withTx(ctx, tx)

	sales, err := r.sales.List(txCtx)
	if err != nil {
		return nil, err
	}

	expenses, err := r.expenses.List(txCtx)
	if err != nil {
		return nil, err
	}

	snapshot := &models.Snapshot{
		Sales:    make([]models.Sale, 0, len(sales)),
		Expenses: make([]models.Expense, 0, len(expenses)),
		ReadAt:   time.Now(),
	}
	for _, sale := range sales {
		snapshot.Sales = append(snapshot.Sales, *sale)
	}
	for _, expense := range expenses {
		snapshot.Expenses = append(snapshot.Expenses, *expense)
	}

	r.logger.WithFields(logrus.Fields{
		"sales":    len(snapshot.Sales),
		"expenses": len(snapshot.Expenses),
		"duration": time.Since(start),
	}).Debug("Snapshot loaded")

	return snapshot, nil
}
