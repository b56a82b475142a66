// Package money holds the fixed-point arithmetic used to price quotes.
//
// Every amount is a decimal.Decimal; rounding to cents happens where a value
// is computed, never on the way out.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places kept on monetary values.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Line is the priced part of a quote item.
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Totals is the derived monetary state of a quote.
type Totals struct {
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Taxable   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Round rounds d half away from zero to cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// LineTotal returns quantity × unit price rounded to cents.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return Round(quantity.Mul(unitPrice))
}

// ComputeTotals derives subtotal, tax and grand total.
//
// The subtotal is the sum of per-line rounded totals. The discount only
// reduces the taxable base; it is not removed from the subtotal.
func ComputeTotals(lines []Line, discount Discount, taxRatePercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l.Quantity, l.UnitPrice))
	}

	discountAmount := discount.Amount(subtotal)
	taxable := subtotal.Sub(discountAmount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	tax := Round(taxable.Mul(taxRatePercent).Div(hundred))

	return Totals{
		Subtotal:  subtotal,
		Discount:  discountAmount,
		Taxable:   taxable,
		TaxAmount: tax,
		Total:     taxable.Add(tax),
	}
}

// ValidateLine rejects negative or zero quantities and negative prices.
func ValidateLine(l Line) error {
	if !l.Quantity.IsPositive() {
		return fmt.Errorf("quantity must be positive, got %s", l.Quantity)
	}
	if l.UnitPrice.IsNegative() {
		return fmt.Errorf("unit price must not be negative, got %s", l.UnitPrice)
	}
	return nil
}

// ValidateRate checks a tax rate percentage is within [0, 100].
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return fmt.Errorf("tax rate must be between 0 and 100, got %s", rate)
	}
	return nil
}
