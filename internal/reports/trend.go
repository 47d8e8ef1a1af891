package reports

import (
	"time"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
)

// MonthsInRange returns the first instant of every calendar month from the month
// containing start through the month containing end, in start's location. The result
// is empty when end falls in a month before start's.
func MonthsInRange(start, end time.Time) []time.Time {
	loc := start.Location()
	end = end.In(loc)

	current := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, loc)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, loc)

	var months []time.Time
	for !current.After(last) {
		months = append(months, current)
		current = current.AddDate(0, 1, 0)
	}
	return months
}

// MonthBounds returns the inclusive unix bounds of the month starting at monthStart
func MonthBounds(monthStart time.Time) (int64, int64) {
	return monthStart.Unix(), monthStart.AddDate(0, 1, 0).Unix() - 1
}

// MonthlyProfitExpenses builds one bucket per calendar month between start and end.
// Each bucket is filtered by its own month bounds, not by the overall range, and
// months without activity still appear with zero figures.
func MonthlyProfitExpenses(sales []models.Sale, expenses []models.Expense, start, end time.Time) []models.TrendBucket {
	months := MonthsInRange(start, end)
	buckets := make([]models.TrendBucket, 0, len(months))

	for _, month := range months {
		from, to := MonthBounds(month)
		buckets = append(buckets, models.TrendBucket{
			DateName: month.Format(models.TrendLabelLayout),
			Profit:   TotalProfitInRange(sales, from, to),
			Expenses: TotalExpenseInRange(expenses, from, to),
		})
	}
	return buckets
}
