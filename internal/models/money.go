package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value carried as decimal text. Records keep the literal they
// were created with; arithmetic goes through Float64, which never fails.
type Amount string

// NewAmount formats a float as an Amount literal
func NewAmount(value float64) Amount {
	return Amount(decimal.NewFromFloat(value).String())
}

// Float64 returns the parsed value, or 0 when the amount is absent or malformed
func (a Amount) Float64() float64 {
	return ParseOrZero(string(a))
}

// String returns the literal text
func (a Amount) String() string {
	return string(a)
}

// IsSet reports whether the amount carries any text at all
func (a Amount) IsSet() bool {
	return strings.TrimSpace(string(a)) != ""
}

// Valid reports whether the literal parses as a decimal number. Empty amounts are valid.
func (a Amount) Valid() bool {
	if !a.IsSet() {
		return true
	}
	_, err := decimal.NewFromString(strings.TrimSpace(string(a)))
	return err == nil
}

// UnmarshalJSON accepts a JSON string, a JSON number or null
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*a = ""
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		*a = Amount(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or a decimal string: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// MarshalJSON passes the literal through unchanged
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(string(a))
}

// Scan implements sql.Scanner
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = ""
	case string:
		*a = Amount(v)
	case []byte:
		*a = Amount(string(v))
	case float64:
		*a = NewAmount(v)
	case int64:
		*a = Amount(fmt.Sprintf("%d", v))
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
	return nil
}

// Value implements driver.Valuer
func (a Amount) Value() (driver.Value, error) {
	if !a.IsSet() {
		return nil, nil
	}
	return string(a), nil
}

// ParseOrZero parses decimal text. Absent, empty and unparseable input all yield 0:
// a malformed field must never abort a report.
func ParseOrZero(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0
	}

	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// RoundTo rounds to the given number of decimal places using the exact binary value
// of the float, ties away from zero. This matches JavaScript's toFixed followed by a
// numeric conversion, which stored figures were originally produced with.
func RoundTo(value float64, places int32) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}

	// 1074 fractional digits represent any finite float64 exactly
	exact := new(big.Float).SetFloat64(value).Text('f', 1074)
	d, err := decimal.NewFromString(exact)
	if err != nil {
		return value
	}

	rounded, _ := d.Round(places).Float64()
	return rounded
}

// RoundToTwoDecimals rounds a monetary figure to cents
func RoundToTwoDecimals(value float64) float64 {
	return RoundTo(value, 2)
}

// RoundToThreeDecimals rounds a margin figure to three places
func RoundToThreeDecimals(value float64) float64 {
	return RoundTo(value, 3)
}
