// Package reports turns raw sale and expense records into financial figures: per-sale
// valuation, date-ranged totals, monthly profit/expense series and top-N rankings.
//
// Every function is a pure transformation of its arguments. Nothing here performs I/O,
// logs, or keeps state between calls, so callers may use the package concurrently.
// Callers are expected to pass sales and expenses read from the same snapshot.
//
// Monetary text is parsed with models.ParseOrZero: missing or malformed values count
// as zero instead of failing a report.
package reports
