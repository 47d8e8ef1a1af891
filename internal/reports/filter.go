package reports

import (
	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
)

// InRange reports whether ts lies in [start, end]. Timestamps are raw unix seconds; no
// timezone conversion happens here.
func InRange(ts, start, end int64) bool {
	return ts >= start && ts <= end
}

// DateRange is an inclusive range of unix seconds
type DateRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Contains reports whether ts lies in the range
func (r DateRange) Contains(ts int64) bool {
	return InRange(ts, r.Start, r.End)
}

// dated is a pointer to a record carrying a business date
type dated[T any] interface {
	*T
	UnixTimestamp() int64
}

// FilterByRange returns the records dated inside r, in their original order
func FilterByRange[T any, P dated[T]](records []T, r DateRange) []T {
	filtered := make([]T, 0, len(records))
	for i := range records {
		if r.Contains(P(&records[i]).UnixTimestamp()) {
			filtered = append(filtered, records[i])
		}
	}
	return filtered
}

// FilterSales returns the sales whose business date falls in [start, end]
func FilterSales(sales []models.Sale, start, end int64) []models.Sale {
	return FilterByRange(sales, DateRange{Start: start, End: end})
}

// FilterExpenses returns the expenses whose business date falls in [start, end]
func FilterExpenses(expenses []models.Expense, start, end int64) []models.Expense {
	return FilterByRange(expenses, DateRange{Start: start, End: end})
}
