package reports

import (
	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
)

// TotalProfitInRange sums Profit over the sales dated in [start, end]
func TotalProfitInRange(sales []models.Sale, start, end int64) float64 {
	var total float64
	for _, sale := range FilterSales(sales, start, end) {
		total += Profit(&sale)
	}
	return total
}

// TotalExpenseInRange sums the cost of the expenses dated in [start, end]
func TotalExpenseInRange(expenses []models.Expense, start, end int64) float64 {
	var total float64
	for _, expense := range FilterExpenses(expenses, start, end) {
		total += expense.Cost.Float64()
	}
	return total
}

// TotalUnitsInRange counts units sold in [start, end], regardless of price
func TotalUnitsInRange(sales []models.Sale, start, end int64) int {
	units := 0
	for _, sale := range FilterSales(sales, start, end) {
		units += sale.Units()
	}
	return units
}

// Summarize computes the headline figures of the reports page for one range
func Summarize(sales []models.Sale, expenses []models.Expense, start, end int64) models.RangeSummary {
	profit := TotalProfitInRange(sales, start, end)
	expenseTotal := TotalExpenseInRange(expenses, start, end)

	return models.RangeSummary{
		StartDate: start,
		EndDate:   end,
		Profit:    profit,
		Expenses:  expenseTotal,
		Net:       profit - expenseTotal,
		UnitsSold: TotalUnitsInRange(sales, start, end),
	}
}
