// Package settings stores the per-user company profile and PDF preferences.
package settings

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/devisflow/devisflow/internal/fiscal"
)

const (
	DefaultCompanyName          = "My Company"
	DefaultVATExemptionText     = "TVA non applicable, art. 293 B du CGI"
	DefaultLatePaymentPenalties = "3 fois le taux d'intérêt légal"
	DefaultCurrency             = "EUR"
)

// DefaultTaxRate is the rate proposed for new quotes of VAT-liable users.
var DefaultTaxRate = decimal.NewFromInt(20)

// Settings is the company profile of a user. TaxStatus lives on the user row
// and is carried here for reading and updating in one place.
type Settings struct {
	UserID               string           `json:"user_id"`
	CompanyName          string           `json:"company_name"`
	CompanyAddress       *string          `json:"company_address"`
	CompanyEmail         *string          `json:"company_email"`
	CompanyPhone         *string          `json:"company_phone"`
	CompanyWebsite       *string          `json:"company_website"`
	CompanySiret         *string          `json:"company_siret"`
	CompanyLogoURL       *string          `json:"company_logo_url"`
	PDFFooterText        *string          `json:"pdf_footer_text"`
	VATExemptionText     string           `json:"vat_exemption_text"`
	LatePaymentPenalties string           `json:"late_payment_penalties"`
	DefaultCurrency      string           `json:"default_currency"`
	DefaultTaxRate       decimal.Decimal  `json:"default_tax_rate"`
	TaxStatus            fiscal.TaxStatus `json:"tax_status"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// UpdateSettingsRequest is the payload of PUT /settings. Nil fields are left as is.
type UpdateSettingsRequest struct {
	CompanyName          *string          `json:"company_name" validate:"omitempty,min=1,max=200"`
	CompanyAddress       *string          `json:"company_address" validate:"omitempty,max=500"`
	CompanyEmail         *string          `json:"company_email" validate:"omitempty,email"`
	CompanyPhone         *string          `json:"company_phone" validate:"omitempty,max=50"`
	CompanyWebsite       *string          `json:"company_website" validate:"omitempty,url"`
	CompanySiret         *string          `json:"company_siret" validate:"omitempty,len=14,numeric"`
	CompanyLogoURL       *string          `json:"company_logo_url" validate:"omitempty,url"`
	PDFFooterText        *string          `json:"pdf_footer_text" validate:"omitempty,max=1000"`
	VATExemptionText     *string          `json:"vat_exemption_text" validate:"omitempty,max=500"`
	LatePaymentPenalties *string          `json:"late_payment_penalties" validate:"omitempty,max=500"`
	DefaultCurrency      *string          `json:"default_currency" validate:"omitempty,oneof=EUR"`
	DefaultTaxRate       *decimal.Decimal `json:"default_tax_rate"`
	TaxStatus            *string          `json:"tax_status" validate:"omitempty,oneof=FRANCHISE ASSUJETTI"`
}
