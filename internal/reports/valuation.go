package reports

import (
	"github.com/KarlaDampilag/dailysalesexpenses/internal/models"
)

// Subtotal sums sale price times quantity over the items. No rounding is applied.
func Subtotal(items []models.SaleItem) float64 {
	var total float64
	for _, item := range items {
		total += item.SalePrice.Float64() * float64(item.Quantity)
	}
	return total
}

// GrossProfit sums the per-item margin. The unit margin is rounded to three places,
// then the quantity-scaled margin is rounded to three places again before summing.
// Items without a cost price count their whole sale price as margin.
func GrossProfit(items []models.SaleItem) float64 {
	var profit float64
	for _, item := range items {
		unitMargin := models.RoundToThreeDecimals(item.SalePrice.Float64() - item.CostPrice.Float64())
		profit += models.RoundToThreeDecimals(unitMargin * float64(item.Quantity))
	}
	return profit
}

// Deduction applies a FLAT or PERCENTAGE value against base. Anything that is not FLAT
// is treated as a percentage.
func Deduction(kind models.DeductionType, value models.Amount, base float64) float64 {
	number := value.Float64()
	if kind == models.DeductionFlat {
		return number
	}
	return base * (number / 100)
}

// DiscountDeduction returns the discount taken off the subtotal
func DiscountDeduction(sale *models.Sale, subtotal float64) float64 {
	return Deduction(sale.DiscountType, sale.DiscountValue, subtotal)
}

// TaxAddition returns the tax added on top of the discounted amount
func TaxAddition(sale *models.Sale, discounted float64) float64 {
	return Deduction(sale.TaxType, sale.TaxValue, discounted)
}

// Total computes what the customer pays: the subtotal less the discount, plus tax on
// the discounted amount, plus shipping, rounded to cents.
func Total(sale *models.Sale) float64 {
	subtotal := Subtotal(sale.SaleItems)
	total := subtotal - DiscountDeduction(sale, subtotal)
	tax := TaxAddition(sale, total)
	total = total + tax + sale.Shipping.Float64()
	return models.RoundToTwoDecimals(total)
}

// Profit is gross profit less the discount. Tax and shipping pass through and never
// affect margin.
func Profit(sale *models.Sale) float64 {
	grossProfit := GrossProfit(sale.SaleItems)
	subtotal := Subtotal(sale.SaleItems)
	return grossProfit - DiscountDeduction(sale, subtotal)
}

// Valuate returns the full breakdown of a sale using the same rules as Total and Profit
func Valuate(sale *models.Sale) models.SaleValuation {
	subtotal := Subtotal(sale.SaleItems)
	grossProfit := GrossProfit(sale.SaleItems)
	discount := DiscountDeduction(sale, subtotal)
	tax := TaxAddition(sale, subtotal-discount)

	return models.SaleValuation{
		SaleID:            sale.ID,
		Subtotal:          subtotal,
		GrossProfit:       grossProfit,
		DiscountDeduction: discount,
		TaxAddition:       tax,
		Shipping:          sale.Shipping.Float64(),
		Total:             Total(sale),
		Profit:            grossProfit - discount,
	}
}
