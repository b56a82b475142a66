// Package quotes implements the quote aggregate: pricing, lifecycle, the
// paid lock, item reconciliation and the public share/sign workflow.
package quotes

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devisflow/devisflow/internal/fiscal"
	"github.com/devisflow/devisflow/internal/money"
)

// Status is the lifecycle state of a quote.
type Status string

const (
	StatusDraft    Status = "Draft"
	StatusSent     Status = "Sent"
	StatusAccepted Status = "Accepted"
	StatusRejected Status = "Rejected"
	StatusSigned   Status = "Signed"
)

// ParseStatus validates a wire value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusSigned:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Currency is the closed set of supported quote currencies.
type Currency string

const CurrencyEUR Currency = "EUR"

// ParseCurrency validates a wire value; empty means EUR.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(s) {
	case CurrencyEUR, "":
		return CurrencyEUR, nil
	}
	return "", fmt.Errorf("unsupported currency %q", s)
}

// Quote is the aggregate root.
type Quote struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	ClientID    uuid.UUID `json:"client_id"`
	QuoteNumber string    `json:"quote_number"`
	Status      Status    `json:"status"`
	Currency    Currency  `json:"currency"`

	Subtotal      decimal.Decimal    `json:"subtotal"`
	DiscountType  money.DiscountType `json:"discount_type"`
	DiscountValue *decimal.Decimal   `json:"discount_value,omitempty"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	TaxAmount     decimal.Decimal    `json:"tax_amount"`
	Total         decimal.Decimal    `json:"total"`
	TaxStatus     fiscal.TaxStatus   `json:"tax_status"`

	Notes        *string `json:"notes,omitempty"`
	PaymentTerms *string `json:"payment_terms,omitempty"`

	IsPaid      bool       `json:"is_paid"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`

	ShareToken          *string    `json:"share_token,omitempty"`
	ShareTokenExpiresAt *time.Time `json:"share_token_expires_at,omitempty"`
	SignedAt            *time.Time `json:"signed_at,omitempty"`
	SignatureData       *string    `json:"-"`
	SignerName          *string    `json:"signer_name,omitempty"`
	SignerIP            *string    `json:"signer_ip,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`

	Items []Item `json:"items"`
}

// Item is a priced line owned by one quote.
type Item struct {
	ID          uuid.UUID       `json:"id"`
	QuoteID     uuid.UUID       `json:"quote_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
	Order       int             `json:"order"`
}

// Discount returns the quote's discount as a calculator value.
func (q *Quote) Discount() money.Discount {
	return money.Discount{Type: q.DiscountType, Value: q.DiscountValue}
}

// IsSigned reports whether signature evidence has been recorded.
func (q *Quote) IsSigned() bool {
	return q.SignedAt != nil
}

// SortedItems returns a copy of the items in display order.
func (q *Quote) SortedItems() []Item {
	items := make([]Item, len(q.Items))
	copy(items, q.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
	return items
}

// Totals runs the calculator over the current items.
func (q *Quote) Totals() money.Totals {
	lines := make([]money.Line, len(q.Items))
	for i, it := range q.Items {
		lines[i] = money.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return money.ComputeTotals(lines, q.Discount(), q.TaxRate)
}

// recomputeTotals derives subtotal, tax and total from the current items.
func (q *Quote) recomputeTotals() money.Totals {
	totals := q.Totals()
	q.Subtotal = totals.Subtotal
	q.TaxAmount = totals.TaxAmount
	q.Total = totals.Total
	return totals
}

func (q *Quote) clone() *Quote {
	c := *q
	c.Items = make([]Item, len(q.Items))
	copy(c.Items, q.Items)
	return &c
}
