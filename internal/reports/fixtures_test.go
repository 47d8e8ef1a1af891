package reports

import (
	"time"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
)

func product(id string, salePrice, costPrice models.Amount, categories ...string) *models.Product {
	return &models.Product{
		ID:         id,
		Name:       "product " + id,
		SalePrice:  salePrice,
		CostPrice:  costPrice,
		Categories: categories,
	}
}

func item(p *models.Product, salePrice, costPrice models.Amount, quantity int) models.SaleItem {
	return models.SaleItem{Product: p, SalePrice: salePrice, CostPrice: costPrice, Quantity: quantity}
}

func sale(id string, at time.Time, customer *models.CustomerRef, items ...models.SaleItem) models.Sale {
	return models.Sale{
		ID:           id,
		Timestamp:    at.Unix(),
		Customer:     customer,
		SaleItems:    items,
		DiscountType: models.DeductionFlat,
		TaxType:      models.DeductionPercentage,
	}
}

func expense(id string, at time.Time, cost models.Amount) models.Expense {
	return models.Expense{ID: id, Name: "expense " + id, Timestamp: at.Unix(), Cost: cost}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}
