// Package fiscal covers the French VAT regime of a user: the franchise
// threshold monitor and the revenue ledger (livre des recettes).
package fiscal

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TaxStatus is the VAT regime of a user, snapshotted onto each quote.
type TaxStatus string

const (
	// TaxStatusFranchise: TVA non applicable, art. 293 B du CGI.
	TaxStatusFranchise TaxStatus = "FRANCHISE"
	// TaxStatusAssujetti: VAT-liable.
	TaxStatusAssujetti TaxStatus = "ASSUJETTI"
)

// ParseTaxStatus validates a wire value.
func ParseTaxStatus(s string) (TaxStatus, error) {
	switch TaxStatus(s) {
	case TaxStatusFranchise, TaxStatusAssujetti:
		return TaxStatus(s), nil
	}
	return "", fmt.Errorf("unknown tax status %q", s)
}

// ChargesVAT reports whether quotes under this status carry VAT.
func (s TaxStatus) ChargesVAT() bool {
	return s == TaxStatusAssujetti
}

// EffectiveTaxRate forces the rate to zero under the franchise regime.
func (s TaxStatus) EffectiveTaxRate(requested decimal.Decimal) decimal.Decimal {
	if !s.ChargesVAT() {
		return decimal.Zero
	}
	return requested
}

// LedgerEntry is one paid quote in the revenue ledger.
type LedgerEntry struct {
	PaymentDate   *time.Time
	QuoteNumber   string
	ClientName    string
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
}
