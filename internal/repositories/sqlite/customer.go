package sqlite

import (
	"context"
	"database/sql"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"

	"github.com/sirupsen/logrus"
)

const customerColumns = `id, name, email, phone, street1, street2, city, state, zip_code, country, created_at`

// CustomerRepository implements the CustomerRepository interface for SQLite
type CustomerRepository struct {
	*BaseRepository[models.Customer]
}

// NewCustomerRepository creates a new SQLite customer repository
func NewCustomerRepository(db *sql.DB, logger *logrus.Logger) repositories.CustomerRepository {
	return &CustomerRepository{
		BaseRepository: NewBaseRepository[models.Customer](db, "customers", logger),
	}
}

// Create creates a new customer
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if err := customer.Validate(); err != nil {
		return repositories.ValidationError("customer", customer.ID, err)
	}

	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.Street1,
		customer.Street2,
		customer.City,
		customer.State,
		customer.ZipCode,
		customer.Country,
		customer.CreatedAt,
	)
	if err != nil {
		return r.classifyError(err, "customer", customer.ID)
	}

	return nil
}

// GetByID retrieves a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`

	customer, err := scanCustomer(r.executeQueryRow(ctx, "get_by_id", query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("customer", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "customer", id, err)
	}

	return customer, nil
}

// List retrieves every customer ordered by name
func (r *CustomerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY name, created_at`

	rows, err := r.executeQuery(ctx, "list", query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError("list", "customer", "", err)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list", "customer", "", err)
	}

	return customers, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	customer := &models.Customer{}
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&customer.Street1,
		&customer.Street2,
		&customer.City,
		&customer.State,
		&customer.ZipCode,
		&customer.Country,
		&customer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return customer, nil
}
