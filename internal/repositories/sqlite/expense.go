package sqlite

import (
	"context"
	"database/sql"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"

	"github.com/sirupsen/logrus"
)

const expenseColumns = `id, timestamp, cost, name, description, created_at`

// ExpenseRepository implements the ExpenseRepository interface for SQLite
type ExpenseRepository struct {
	*BaseRepository[models.Expense]
}

// NewExpenseRepository creates a new SQLite expense repository
func NewExpenseRepository(db *sql.DB, logger *logrus.Logger) repositories.ExpenseRepository {
	return newExpenseRepository(db, logger)
}

func newExpenseRepository(db *sql.DB, logger *logrus.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		BaseRepository: NewBaseRepository[models.Expense](db, "expenses", logger),
	}
}

// Create creates a new expense
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	if err := expense.Validate(); err != nil {
		return repositories.ValidationError("expense", expense.ID, err)
	}

	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		expense.ID,
		expense.Timestamp,
		expense.Cost,
		expense.Name,
		expense.Description,
		expense.CreatedAt,
	)
	if err != nil {
		return r.classifyError(err, "expense", expense.ID)
	}

	return nil
}

// GetByID retrieves an expense by ID
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

	expense, err := scanExpense(r.executeQueryRow(ctx, "get_by_id", query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("expense", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "expense", id, err)
	}

	return expense, nil
}

// List retrieves every expense ordered by business date
func (r *ExpenseRepository) List(ctx context.Context) ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses ORDER BY timestamp, created_at, id`

	rows, err := r.executeQuery(ctx, "list", query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError("list", "expense", "", err)
		}
		expenses = append(expenses, expense)
	}

	if err = rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list", "expense", "", err)
	}

	return expenses, nil
}

// Delete removes an expense
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	err := row.Scan(
		&expense.ID,
		&expense.Timestamp,
		&expense.Cost,
		&expense.Name,
		&expense.Description,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return expense, nil
}
