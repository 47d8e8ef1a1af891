package reports

import (
	"sort"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
)

// TopProducts ranks products sold in [start, end] by revenue, highest first. Each
// line's revenue is rounded to cents before it is added to the product total. Equal
// revenues keep the order in which products were first seen. A count of zero or less
// returns every product. Lines without a product are skipped since they have no row to
// join; TopCategories likewise drops them because a nil product has no categories.
func TopProducts(sales []models.Sale, start, end int64, count int) []models.ProductSales {
	index := make(map[string]int)
	var rows []models.ProductSales

	for _, sale := range FilterSales(sales, start, end) {
		for _, item := range sale.SaleItems {
			if item.Product == nil {
				continue
			}
			i, ok := index[item.Product.ID]
			if !ok {
				i = len(rows)
				index[item.Product.ID] = i
				rows = append(rows, models.ProductSales{Product: item.Product})
			}
			rows[i].QuantitySold += item.Quantity
			rows[i].Revenue += models.RoundToTwoDecimals(item.Revenue())
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Revenue > rows[b].Revenue
	})
	return truncate(rows, count)
}

// TopCategories ranks categories by revenue, highest first. A line counts in full
// toward every category its product belongs to, so category revenues can add up to
// more than the range's actual revenue when products carry several categories.
// Products without categories contribute nothing.
func TopCategories(sales []models.Sale, start, end int64, count int) []models.CategorySales {
	index := make(map[string]int)
	var rows []models.CategorySales

	for _, sale := range FilterSales(sales, start, end) {
		for _, item := range sale.SaleItems {
			revenue := models.RoundToTwoDecimals(item.Revenue())
			for _, category := range item.Product.CategoryList() {
				i, ok := index[category]
				if !ok {
					i = len(rows)
					index[category] = i
					rows = append(rows, models.CategorySales{Category: category})
				}
				rows[i].QuantitySold += item.Quantity
				rows[i].Revenue += revenue
			}
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Revenue > rows[b].Revenue
	})
	return truncate(rows, count)
}

// TopCustomers ranks customers by the profit of their sales in [start, end], highest
// first. Sales without a customer are left out. Revenue is summed per sale and rounded
// to cents before it joins the customer total.
func TopCustomers(sales []models.Sale, start, end int64, count int) []models.CustomerSales {
	index := make(map[string]int)
	var rows []models.CustomerSales

	for _, sale := range FilterSales(sales, start, end) {
		if sale.Customer == nil {
			continue
		}
		i, ok := index[sale.Customer.ID]
		if !ok {
			i = len(rows)
			index[sale.Customer.ID] = i
			rows = append(rows, models.CustomerSales{Customer: sale.Customer})
		}

		units, revenue := unitsAndRevenue(&sale)
		rows[i].Transactions++
		rows[i].Units += units
		rows[i].Revenue += models.RoundToTwoDecimals(revenue)
		rows[i].Profit += Profit(&sale)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Profit > rows[b].Profit
	})
	return truncate(rows, count)
}

func unitsAndRevenue(sale *models.Sale) (int, float64) {
	units := 0
	var revenue float64
	for _, item := range sale.SaleItems {
		units += item.Quantity
		revenue += item.Revenue()
	}
	return units, revenue
}

func truncate[T any](rows []T, count int) []T {
	if rows == nil {
		rows = []T{}
	}
	if count > 0 && count < len(rows) {
		return rows[:count]
	}
	return rows
}
