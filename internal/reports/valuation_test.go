package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
)

func TestValuationWorkedExample(t *testing.T) {
	p := product("p1", "100", "60")
	s := sale("s1", day(2023, 1, 5), nil, item(p, "100", "60", 2))
	s.DiscountType = models.DeductionFlat
	s.DiscountValue = "20"
	s.TaxType = models.DeductionPercentage
	s.TaxValue = "10"
	s.Shipping = "15"

	assert.Equal(t, 200.0, Subtotal(s.SaleItems))
	assert.Equal(t, 80.0, GrossProfit(s.SaleItems))
	assert.Equal(t, 20.0, DiscountDeduction(&s, 200))
	assert.Equal(t, 60.0, Profit(&s))
	assert.Equal(t, 213.0, Total(&s))

	v := Valuate(&s)
	assert.Equal(t, models.SaleValuation{
		SaleID:            "s1",
		Subtotal:          200,
		GrossProfit:       80,
		DiscountDeduction: 20,
		TaxAddition:       18,
		Shipping:          15,
		Total:             213,
		Profit:            60,
	}, v)
}

func TestValuationEmptyItems(t *testing.T) {
	tests := []struct {
		name      string
		discount  models.DeductionType
		tax       models.DeductionType
		shipping  models.Amount
		wantTotal float64
	}{
		{name: "percentage deductions", discount: models.DeductionPercentage, tax: models.DeductionPercentage, shipping: "12.5", wantTotal: 12.5},
		{name: "no shipping", discount: models.DeductionPercentage, tax: models.DeductionPercentage, shipping: "", wantTotal: 0},
		{name: "flat zero deductions", discount: models.DeductionFlat, tax: models.DeductionFlat, shipping: "7", wantTotal: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sale("empty", day(2023, 1, 1), nil)
			s.DiscountType = tt.discount
			s.DiscountValue = "10"
			s.TaxType = tt.tax
			s.TaxValue = "10"
			s.Shipping = tt.shipping

			assert.Equal(t, 0.0, Subtotal(s.SaleItems))
			assert.Equal(t, 0.0, GrossProfit(s.SaleItems))
			assert.Equal(t, 0.0, Profit(&s))
			assert.Equal(t, tt.wantTotal, Total(&s))
		})
	}
}

func TestGrossProfitRoundsTwice(t *testing.T) {
	p := product("p1", "", "")

	// 0.3 - 0.1 drifts just below 0.2; both rounding points pull it back
	items := []models.SaleItem{item(p, "0.3", "0.1", 3)}
	assert.Equal(t, 0.6, GrossProfit(items))

	// 1.0005 rounds to 1.001 per unit, then 1.001 * 3 = 3.003
	items = []models.SaleItem{item(p, "2.0005", "1", 3)}
	assert.Equal(t, 3.003, GrossProfit(items))

	// missing cost price counts the whole price as margin
	items = []models.SaleItem{item(p, "4.25", "", 2)}
	assert.Equal(t, 8.5, GrossProfit(items))
}

func TestMalformedAmountsCountAsZero(t *testing.T) {
	p := product("p1", "", "")
	s := sale("s1", day(2023, 1, 1), nil,
		item(p, "abc", "1", 2),
		item(p, "10", "n/a", 1),
	)
	s.DiscountValue = "lots"
	s.TaxValue = "?"
	s.Shipping = "free"

	assert.Equal(t, 10.0, Subtotal(s.SaleItems))
	assert.Equal(t, 8.0, GrossProfit(s.SaleItems))
	assert.Equal(t, 10.0, Total(&s))
	assert.Equal(t, 8.0, Profit(&s))
}

func TestTotalReconstructsFromComponents(t *testing.T) {
	p := product("p1", "", "")
	tests := []struct {
		name     string
		discount models.DeductionType
		dValue   models.Amount
		tax      models.DeductionType
		tValue   models.Amount
		shipping models.Amount
	}{
		{name: "percent discount percent tax", discount: models.DeductionPercentage, dValue: "12.5", tax: models.DeductionPercentage, tValue: "7.25", shipping: "3.99"},
		{name: "flat discount flat tax", discount: models.DeductionFlat, dValue: "4.10", tax: models.DeductionFlat, tValue: "1.15", shipping: ""},
		{name: "percent discount flat tax", discount: models.DeductionPercentage, dValue: "33.333", tax: models.DeductionFlat, tValue: "2", shipping: "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sale("s1", day(2023, 1, 1), nil,
				item(p, "19.99", "11.37", 3),
				item(p, "0.35", "0.1", 7),
			)
			s.DiscountType, s.DiscountValue = tt.discount, tt.dValue
			s.TaxType, s.TaxValue = tt.tax, tt.tValue
			s.Shipping = tt.shipping

			v := Valuate(&s)
			want := models.RoundToTwoDecimals((v.Subtotal - v.DiscountDeduction) + v.TaxAddition + v.Shipping)
			assert.Equal(t, want, Total(&s))
			assert.Equal(t, v.GrossProfit-v.DiscountDeduction, Profit(&s))
		})
	}
}

func TestTaxAppliesAfterDiscount(t *testing.T) {
	p := product("p1", "", "")
	s := sale("s1", day(2023, 1, 1), nil, item(p, "50", "", 2))
	s.DiscountType, s.DiscountValue = models.DeductionPercentage, "50"
	s.TaxType, s.TaxValue = models.DeductionPercentage, "10"

	// 100 - 50 = 50, tax 5 on the discounted amount, not 10 on the subtotal
	assert.Equal(t, 55.0, Total(&s))
	// tax never reduces profit
	assert.Equal(t, 50.0, Profit(&s))
}
