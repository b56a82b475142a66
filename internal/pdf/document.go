// Package pdf renders quote documents to PDF through Gotenberg.
package pdf

import (
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

// Party is an issuer or recipient block.
type Party struct {
	Name       string
	Company    string
	Address    string
	PostalCode string
	City       string
	Email      string
	Phone      string
	Website    string
	Siret      string
	VATNumber  string
}

// Line is a row of the items table, already in display order.
type Line struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// Signature is shown once a quote has been signed.
type Signature struct {
	SignerName   string
	SignedAt     time.Time
	ImageDataURI template.URL
}

// Document is everything the quote template needs. It carries no behavior so
// callers assemble it from their own models.
type Document struct {
	Number       string
	IssuedAt     time.Time
	ValidityDays int
	Currency     string

	Issuer  Party
	LogoURL string
	Client  Party
	Lines   []Line

	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal

	ChargesVAT           bool
	VATExemptionText     string
	LatePaymentPenalties string
	Notes                string
	PaymentTerms         string
	Footer               string

	Signature *Signature
}

// DefaultValidityDays is printed when the document does not set one.
const DefaultValidityDays = 30
