package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DiscountType selects how Discount.Value is interpreted.
type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

// ParseDiscountType accepts the wire names of the discount types.
func ParseDiscountType(s string) (DiscountType, error) {
	switch DiscountType(s) {
	case DiscountFixed, DiscountPercentage:
		return DiscountType(s), nil
	case "":
		return DiscountFixed, nil
	}
	return "", fmt.Errorf("unknown discount type %q", s)
}

// Discount is an optional reduction of the taxable base.
type Discount struct {
	Type  DiscountType
	Value *decimal.Decimal
}

// NoDiscount is the zero discount.
var NoDiscount = Discount{Type: DiscountFixed}

// Amount resolves the discount against the subtotal, rounded to cents.
func (d Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	if d.Value == nil || d.Value.IsZero() {
		return decimal.Zero
	}
	switch d.Type {
	case DiscountPercentage:
		// TODO: apply Value as a rate of subtotal once percentage discounts ship;
		// stored quotes were priced with the value read as an amount.
		return Round(*d.Value)
	default:
		return Round(*d.Value)
	}
}

// Validate rejects negative discount values.
func (d Discount) Validate() error {
	if d.Value != nil && d.Value.IsNegative() {
		return fmt.Errorf("discount must not be negative, got %s", d.Value)
	}
	return nil
}
