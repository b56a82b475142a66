package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotalsWithVAT(t *testing.T) {
	lines := []Line{
		{Quantity: dec("2"), UnitPrice: dec("100")},
		{Quantity: dec("1"), UnitPrice: dec("50")},
	}

	totals := ComputeTotals(lines, NoDiscount, dec("20"))

	assert.True(t, totals.Subtotal.Equal(dec("250.00")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.TaxAmount.Equal(dec("50.00")), "tax %s", totals.TaxAmount)
	assert.True(t, totals.Total.Equal(dec("300.00")), "total %s", totals.Total)
}

func TestComputeTotalsIsDeterministic(t *testing.T) {
	lines := []Line{
		{Quantity: dec("3.333"), UnitPrice: dec("19.99")},
		{Quantity: dec("0.5"), UnitPrice: dec("7.15")},
	}
	discount := Discount{Type: DiscountFixed, Value: ptr(dec("4.20"))}

	first := ComputeTotals(lines, discount, dec("5.5"))
	second := ComputeTotals(lines, discount, dec("5.5"))

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestLineTotalsAreRoundedBeforeSumming(t *testing.T) {
	// 0.333 * 1.5 = 0.4995 -> 0.50 per line, so three lines give 1.50 not 1.4985.
	lines := []Line{
		{Quantity: dec("0.333"), UnitPrice: dec("1.5")},
		{Quantity: dec("0.333"), UnitPrice: dec("1.5")},
		{Quantity: dec("0.333"), UnitPrice: dec("1.5")},
	}

	totals := ComputeTotals(lines, NoDiscount, decimal.Zero)

	assert.True(t, totals.Subtotal.Equal(dec("1.50")), "subtotal %s", totals.Subtotal)
}

func TestDiscountReducesTaxableButNotSubtotal(t *testing.T) {
	lines := []Line{{Quantity: dec("1"), UnitPrice: dec("100")}}
	discount := Discount{Type: DiscountFixed, Value: ptr(dec("10"))}

	totals := ComputeTotals(lines, discount, dec("20"))

	assert.True(t, totals.Subtotal.Equal(dec("100")))
	assert.True(t, totals.Taxable.Equal(dec("90")))
	assert.True(t, totals.TaxAmount.Equal(dec("18")))
	assert.True(t, totals.Total.Equal(dec("108")))
}

func TestSubCentDiscountIsRoundedToCents(t *testing.T) {
	lines := []Line{{Quantity: dec("1"), UnitPrice: dec("100")}}
	discount := Discount{Type: DiscountFixed, Value: ptr(dec("10.004"))}

	totals := ComputeTotals(lines, discount, dec("20"))

	assert.True(t, totals.Discount.Equal(dec("10")), "discount %s", totals.Discount)
	assert.True(t, totals.Taxable.Equal(dec("90")), "taxable %s", totals.Taxable)
	assert.True(t, totals.Total.Equal(dec("108")), "total %s", totals.Total)
	assert.GreaterOrEqual(t, totals.Total.Exponent(), int32(-2))
}

func TestDiscountLargerThanSubtotalClampsToZero(t *testing.T) {
	lines := []Line{{Quantity: dec("1"), UnitPrice: dec("40")}}
	discount := Discount{Type: DiscountFixed, Value: ptr(dec("75"))}

	totals := ComputeTotals(lines, discount, dec("20"))

	assert.True(t, totals.Taxable.IsZero())
	assert.True(t, totals.TaxAmount.IsZero())
	assert.True(t, totals.Total.IsZero())
	assert.True(t, totals.Subtotal.Equal(dec("40")))
}

func TestPercentageDiscountIsReadAsAmount(t *testing.T) {
	lines := []Line{{Quantity: dec("1"), UnitPrice: dec("200")}}
	discount := Discount{Type: DiscountPercentage, Value: ptr(dec("10"))}

	totals := ComputeTotals(lines, discount, decimal.Zero)

	assert.True(t, totals.Total.Equal(dec("190")), "total %s", totals.Total)
}

func TestTaxIsRoundedToCents(t *testing.T) {
	lines := []Line{{Quantity: dec("1"), UnitPrice: dec("10.01")}}

	totals := ComputeTotals(lines, NoDiscount, dec("5.5"))

	// 10.01 * 5.5% = 0.55055
	assert.True(t, totals.TaxAmount.Equal(dec("0.55")), "tax %s", totals.TaxAmount)
	assert.True(t, totals.Total.Equal(dec("10.56")), "total %s", totals.Total)
}

func TestEmptyItemsYieldZeroTotals(t *testing.T) {
	totals := ComputeTotals(nil, NoDiscount, dec("20"))
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestValidateLine(t *testing.T) {
	require.NoError(t, ValidateLine(Line{Quantity: dec("1"), UnitPrice: decimal.Zero}))
	require.Error(t, ValidateLine(Line{Quantity: dec("0"), UnitPrice: dec("1")}))
	require.Error(t, ValidateLine(Line{Quantity: dec("-1"), UnitPrice: dec("1")}))
	require.Error(t, ValidateLine(Line{Quantity: dec("1"), UnitPrice: dec("-0.01")}))
}

func TestParseDiscountType(t *testing.T) {
	dt, err := ParseDiscountType("")
	require.NoError(t, err)
	assert.Equal(t, DiscountFixed, dt)

	dt, err = ParseDiscountType("percentage")
	require.NoError(t, err)
	assert.Equal(t, DiscountPercentage, dt)

	_, err = ParseDiscountType("bogus")
	require.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
