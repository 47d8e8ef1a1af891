package sqlite

import (
	"context"
	"database/sql"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"

	"github.com/sirupsen/logrus"
)

const productColumns = `id, name, unit, sale_price, cost_price, notes, created_at`

// ProductRepository implements the ProductRepository interface for SQLite.
// Category memberships live in product_categories and keep their insertion order.
type ProductRepository struct {
	*BaseRepository[models.Product]
}

// NewProductRepository creates a new SQLite product repository
func NewProductRepository(db *sql.DB, logger *logrus.Logger) repositories.ProductRepository {
	return newProductRepository(db, logger)
}

func newProductRepository(db *sql.DB, logger *logrus.Logger) *ProductRepository {
	return &ProductRepository{
		BaseRepository: NewBaseRepository[models.Product](db, "products", logger),
	}
}

// Create creates a new product together with its categories
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return repositories.ValidationError("product", product.ID, err)
	}

	return r.inTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO products (` + productColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?)`

		_, err := r.executeExec(ctx, "create", query,
			product.ID,
			product.Name,
			product.Unit,
			product.SalePrice,
			product.CostPrice,
			product.Notes,
			product.CreatedAt,
		)
		if err != nil {
			return r.classifyError(err, "product", product.ID)
		}

		seen := make(map[string]bool, len(product.Categories))
		position := 0
		for _, category := range product.Categories {
			if seen[category] {
				continue
			}
			seen[category] = true

			_, err := r.executeExec(ctx, "create_category",
				`INSERT INTO product_categories (product_id, category, position) VALUES (?, ?, ?)`,
				product.ID, category, position,
			)
			if err != nil {
				return r.classifyError(err, "product", product.ID)
			}
			position++
		}

		return nil
	})
}

// GetByID retrieves a product and its categories
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	product, err := scanProduct(r.executeQueryRow(ctx, "get_by_id", query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("product", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "product", id, err)
	}

	categories, err := r.loadCategories(ctx, "WHERE product_id = ?", id)
	if err != nil {
		return nil, err
	}
	product.Categories = categories[product.ID]

	return product, nil
}

// List retrieves every product ordered by name
func (r *ProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name, created_at`

	rows, err := r.executeQuery(ctx, "list", query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError("list", "product", "", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list", "product", "", err)
	}

	categories, err := r.loadCategories(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, product := range products {
		product.Categories = categories[product.ID]
	}

	return products, nil
}

// loadCategories returns category names keyed by product ID, in insertion order
func (r *ProductRepository) loadCategories(ctx context.Context, where string, args ...interface{}) (map[string][]string, error) {
	query := `SELECT product_id, category FROM product_categories ` + where + ` ORDER BY product_id, position`

	rows, err := r.executeQuery(ctx, "list_categories", query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make(map[string][]string)
	for rows.Next() {
		var productID, category string
		if err := rows.Scan(&productID, &category); err != nil {
			return nil, repositories.NewRepositoryError("list_categories", "product", "", err)
		}
		categories[productID] = append(categories[productID], category)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list_categories", "product", "", err)
	}

	return categories, nil
}

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Unit,
		&product.SalePrice,
		&product.CostPrice,
		&product.Notes,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}
