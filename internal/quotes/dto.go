package quotes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemRequest is an item line of a create request.
type ItemRequest struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Order       int             `json:"order"`
}

// CreateQuoteRequest is the payload of POST /quotes.
type CreateQuoteRequest struct {
	ClientID      uuid.UUID        `json:"client_id" validate:"required"`
	QuoteNumber   string           `json:"quote_number" validate:"max=50"`
	Currency      string           `json:"currency" validate:"omitempty,oneof=EUR"`
	DiscountType  string           `json:"discount_type" validate:"omitempty,oneof=fixed percentage"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
	TaxRate       decimal.Decimal  `json:"tax_rate"`
	Notes         *string          `json:"notes" validate:"omitempty,max=5000"`
	PaymentTerms  *string          `json:"payment_terms" validate:"omitempty,max=1000"`
	Items         []ItemRequest    `json:"items" validate:"dive"`
}

// ItemPatch is an incoming item of an update. Nil fields keep their value.
type ItemPatch struct {
	ID          *uuid.UUID       `json:"id"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Order       *int             `json:"order"`
}

// UpdateQuoteRequest is the payload of PUT /quotes/{id}. A nil Items leaves
// the items untouched; an empty list removes them all.
type UpdateQuoteRequest struct {
	ClientID      *uuid.UUID       `json:"client_id"`
	QuoteNumber   *string          `json:"quote_number" validate:"omitempty,max=50"`
	Currency      *string          `json:"currency" validate:"omitempty,oneof=EUR"`
	Status        *string          `json:"status" validate:"omitempty,oneof=Draft Sent Accepted Rejected Signed"`
	DiscountType  *string          `json:"discount_type" validate:"omitempty,oneof=fixed percentage"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
	TaxRate       *decimal.Decimal `json:"tax_rate"`
	Notes         *string          `json:"notes" validate:"omitempty,max=5000"`
	PaymentTerms  *string          `json:"payment_terms" validate:"omitempty,max=1000"`
	IsPaid        *bool            `json:"is_paid"`
	Items         []ItemPatch      `json:"items" validate:"omitempty,dive"`
}

// SignRequest is the payload of the public sign action.
type SignRequest struct {
	SignerName    string `json:"signer_name" validate:"required,max=200"`
	SignatureData string `json:"signature_data" validate:"required"`
}

// ListResponse is the paginated quote listing.
type ListResponse struct {
	Quotes []Quote `json:"quotes"`
	Total  int     `json:"total"`
}

// ShareResponse carries the public link of a quote.
type ShareResponse struct {
	ShareURL  string    `json:"share_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SignResponse confirms a signature.
type SignResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	SignedAt time.Time `json:"signed_at"`
}

// PublicItem is an item as shown to the recipient of a share link.
type PublicItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// PublicQuote is the projection served on share links.
type PublicQuote struct {
	QuoteNumber   string          `json:"quote_number"`
	ClientName    string          `json:"client_name"`
	ClientEmail   string          `json:"client_email"`
	ClientCompany *string         `json:"client_company"`
	Currency      Currency        `json:"currency"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Total         decimal.Decimal `json:"total"`
	Notes         *string         `json:"notes"`
	PaymentTerms  *string         `json:"payment_terms"`
	Items         []PublicItem    `json:"items"`
	Status        Status          `json:"status"`
	IsSigned      bool            `json:"is_signed"`
	SignedAt      *time.Time      `json:"signed_at"`
	SignerName    *string         `json:"signer_name"`
	CreatedAt     time.Time       `json:"created_at"`
}
