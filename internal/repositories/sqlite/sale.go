package sqlite

import (
	"context"
	"database/sql"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"

	"github.com/sirupsen/logrus"
)

// SaleRepository implements the SaleRepository interface for SQLite. Items are stored
// in sale_items with the prices that were current when the sale was recorded.
type SaleRepository struct {
	*BaseRepository[models.Sale]
	products *ProductRepository
}

// NewSaleRepository creates a new SQLite sale repository
func NewSaleRepository(db *sql.DB, logger *logrus.Logger) repositories.SaleRepository {
	return newSaleRepository(db, logger)
}

func newSaleRepository(db *sql.DB, logger *logrus.Logger) *SaleRepository {
	return &SaleRepository{
		BaseRepository: NewBaseRepository[models.Sale](db, "sales", logger),
		products:       newProductRepository(db, logger),
	}
}

// Create stores a sale and its items atomically
func (r *SaleRepository) Create(ctx context.Context, sale *models.Sale) error {
	if err := sale.Validate(); err != nil {
		return repositories.ValidationError("sale", sale.ID, err)
	}

	var customerID interface{}
	if sale.Customer != nil && sale.Customer.ID != "" {
		customerID = sale.Customer.ID
	}

	return r.inTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO sales (
				id, timestamp, customer_id, discount_type, discount_value,
				tax_type, tax_value, shipping, note, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := r.executeExec(ctx, "create", query,
			sale.ID,
			sale.Timestamp,
			customerID,
			sale.DiscountType,
			sale.DiscountValue,
			sale.TaxType,
			sale.TaxValue,
			sale.Shipping,
			sale.Note,
			sale.CreatedAt,
		)
		if err != nil {
			return r.classifyError(err, "sale", sale.ID)
		}

		itemQuery := `
			INSERT INTO sale_items (
				id, sale_id, product_id, sale_price, cost_price, quantity, position
			) VALUES (?, ?, ?, ?, ?, ?, ?)`

		for i, item := range sale.SaleItems {
			_, err := r.executeExec(ctx, "create_item", itemQuery,
				item.ID,
				sale.ID,
				item.Product.ID,
				item.SalePrice,
				item.CostPrice,
				item.Quantity,
				i,
			)
			if err != nil {
				return r.classifyError(err, "sale_item", item.ID)
			}
		}

		return nil
	})
}

// GetByID retrieves a sale with its items, products and customer
func (r *SaleRepository) GetByID(ctx context.Context, id string) (*models.Sale, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	var sales []*models.Sale
	err := r.inTx(ctx, func(ctx context.Context) error {
		var err error
		sales, err = r.load(ctx,
			"WHERE s.id = ?",
			"WHERE si.sale_id = ?",
			"WHERE product_id IN (SELECT product_id FROM sale_items WHERE sale_id = ?)",
			id,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(sales) == 0 {
		return nil, repositories.NotFoundError("sale", id)
	}

	return sales[0], nil
}

// List retrieves every sale ordered by business date
func (r *SaleRepository) List(ctx context.Context) ([]*models.Sale, error) {
	var sales []*models.Sale
	err := r.inTx(ctx, func(ctx context.Context) error {
		var err error
		sales, err = r.load(ctx, "", "", "")
		return err
	})
	return sales, err
}

// Delete removes a sale; its items go with it
func (r *SaleRepository) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}

// load reads sales, their items and the products those items reference. Every filter
// is bound to the same args.
func (r *SaleRepository) load(ctx context.Context, saleWhere, itemWhere, categoryWhere string, args ...interface{}) ([]*models.Sale, error) {
	sales, index, err := r.loadSales(ctx, saleWhere, args...)
	if err != nil {
		return nil, err
	}

	categories, err := r.products.loadCategories(ctx, categoryWhere, args...)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT si.id, si.sale_id, si.sale_price, si.cost_price, si.quantity,
			p.id, p.name, p.unit, p.sale_price, p.cost_price, p.notes, p.created_at
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		` + itemWhere + `
		ORDER BY si.sale_id, si.position`

	rows, err := r.executeQuery(ctx, "list_items", query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make(map[string]*models.Product)
	for rows.Next() {
		var (
			saleID  string
			item    models.SaleItem
			product models.Product
		)
		err := rows.Scan(
			&item.ID,
			&saleID,
			&item.SalePrice,
			&item.CostPrice,
			&item.Quantity,
			&product.ID,
			&product.Name,
			&product.Unit,
			&product.SalePrice,
			&product.CostPrice,
			&product.Notes,
			&product.CreatedAt,
		)
		if err != nil {
			return nil, repositories.NewRepositoryError("list_items", "sale", "", err)
		}

		shared, ok := products[product.ID]
		if !ok {
			product.Categories = categories[product.ID]
			shared = &product
			products[product.ID] = shared
		}
		item.Product = shared

		if i, ok := index[saleID]; ok {
			sales[i].SaleItems = append(sales[i].SaleItems, item)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list_items", "sale", "", err)
	}

	return sales, nil
}

func (r *SaleRepository) loadSales(ctx context.Context, where string, args ...interface{}) ([]*models.Sale, map[string]int, error) {
	query := `
		SELECT s.id, s.timestamp, s.customer_id, c.name, s.discount_type, s.discount_value,
			s.tax_type, s.tax_value, s.shipping, s.note, s.created_at
		FROM sales s
		LEFT JOIN customers c ON c.id = s.customer_id
		` + where + `
		ORDER BY s.timestamp, s.created_at, s.id`

	rows, err := r.executeQuery(ctx, "list", query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var sales []*models.Sale
	index := make(map[string]int)
	for rows.Next() {
		var (
			sale         models.Sale
			customerID   sql.NullString
			customerName sql.NullString
		)
		err := rows.Scan(
			&sale.ID,
			&sale.Timestamp,
			&customerID,
			&customerName,
			&sale.DiscountType,
			&sale.DiscountValue,
			&sale.TaxType,
			&sale.TaxValue,
			&sale.Shipping,
			&sale.Note,
			&sale.CreatedAt,
		)
		if err != nil {
			return nil, nil, repositories.NewRepositoryError("list", "sale", "", err)
		}

		if customerID.Valid {
			sale.Customer = &models.CustomerRef{ID: customerID.String, Name: customerName.String}
		}

		index[sale.ID] = len(sales)
		sales = append(sales, &sale)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, repositories.NewRepositoryError("list", "sale", "", err)
	}

	return sales, index, nil
}
