package quotes

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devisflow/devisflow/internal/fiscal"
	"github.com/devisflow/devisflow/internal/money"
	"github.com/devisflow/devisflow/internal/platform/httpx"
)

// ShareTokenTTL is the validity of a share link for signing.
const ShareTokenTTL = 30 * 24 * time.Hour

// Signature is the evidence recorded by the public sign action.
type Signature struct {
	SignerName    string
	SignatureData string
	SignerIP      string
}

func generateQuoteNumber(now time.Time) string {
	return fmt.Sprintf("Q-%d", now.UnixMilli())
}

// NewQuote builds a Draft quote for userID. taxStatus is the owner's regime at
// creation time and stays on the quote for its whole life.
func NewQuote(userID string, taxStatus fiscal.TaxStatus, req CreateQuoteRequest, now time.Time) (*Quote, error) {
	currency, err := ParseCurrency(req.Currency)
	if err != nil {
		return nil, httpx.NewValidationError("currency", err.Error())
	}
	discount, err := parseDiscount(req.DiscountType, req.DiscountValue)
	if err != nil {
		return nil, err
	}
	if err := money.ValidateRate(req.TaxRate); err != nil {
		return nil, httpx.NewValidationError("tax_rate", err.Error())
	}

	number := strings.TrimSpace(req.QuoteNumber)
	if number == "" {
		number = generateQuoteNumber(now)
	}

	q := &Quote{
		ID:            uuid.New(),
		UserID:        userID,
		ClientID:      req.ClientID,
		QuoteNumber:   number,
		Status:        StatusDraft,
		Currency:      currency,
		DiscountType:  discount.Type,
		DiscountValue: discount.Value,
		TaxRate:       money.Round(taxStatus.EffectiveTaxRate(req.TaxRate)),
		TaxStatus:     taxStatus,
		Notes:         req.Notes,
		PaymentTerms:  req.PaymentTerms,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         make([]Item, 0, len(req.Items)),
	}
	for i, in := range req.Items {
		line := money.Line{Quantity: in.Quantity, UnitPrice: in.UnitPrice}
		if err := money.ValidateLine(line); err != nil {
			return nil, httpx.NewValidationError(fmt.Sprintf("items[%d]", i), err.Error())
		}
		q.Items = append(q.Items, Item{
			ID:          uuid.New(),
			QuoteID:     q.ID,
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Total:       money.LineTotal(in.Quantity, in.UnitPrice),
			Order:       in.Order,
		})
	}
	q.recomputeTotals()
	return q, nil
}

// ApplyUpdate applies a partial update and returns the ids of removed items.
// Paid quotes are rejected whole; on any error the quote is left untouched.
// The caller is responsible for checking ownership of a new client id.
func (q *Quote) ApplyUpdate(req UpdateQuoteRequest, now time.Time) ([]uuid.UUID, error) {
	if q.IsPaid {
		return nil, ErrLocked
	}
	next := q.clone()

	if req.ClientID != nil {
		next.ClientID = *req.ClientID
	}
	if req.QuoteNumber != nil {
		number := strings.TrimSpace(*req.QuoteNumber)
		if number == "" {
			return nil, httpx.NewValidationError("quote_number", "must not be empty")
		}
		next.QuoteNumber = number
	}
	if req.Currency != nil {
		currency, err := ParseCurrency(*req.Currency)
		if err != nil {
			return nil, httpx.NewValidationError("currency", err.Error())
		}
		next.Currency = currency
	}
	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			return nil, httpx.NewValidationError("status", err.Error())
		}
		next.Status = status
	}
	if req.DiscountType != nil || req.DiscountValue != nil {
		dtype := string(next.DiscountType)
		if req.DiscountType != nil {
			dtype = *req.DiscountType
		}
		value := next.DiscountValue
		if req.DiscountValue != nil {
			value = req.DiscountValue
		}
		discount, err := parseDiscount(dtype, value)
		if err != nil {
			return nil, err
		}
		next.DiscountType, next.DiscountValue = discount.Type, discount.Value
	}
	if req.TaxRate != nil {
		if err := money.ValidateRate(*req.TaxRate); err != nil {
			return nil, httpx.NewValidationError("tax_rate", err.Error())
		}
		next.TaxRate = money.Round(next.TaxStatus.EffectiveTaxRate(*req.TaxRate))
	}
	if req.Notes != nil {
		next.Notes = req.Notes
	}
	if req.PaymentTerms != nil {
		next.PaymentTerms = req.PaymentTerms
	}
	if req.IsPaid != nil && *req.IsPaid {
		next.IsPaid = true
		if next.PaymentDate == nil {
			paid := now
			next.PaymentDate = &paid
		}
	}

	var removed []uuid.UUID
	if req.Items != nil {
		items, deleted, err := ReconcileItems(next.ID, next.Items, req.Items, uuid.New)
		if err != nil {
			return nil, err
		}
		next.Items, removed = items, deleted
	}

	next.recomputeTotals()
	next.UpdatedAt = now
	*q = *next
	return removed, nil
}

// Share issues a new share token and moves the quote to Sent, whatever its
// previous status. Earlier signatures are kept.
func (q *Quote) Share(token string, now time.Time) error {
	if q.IsPaid {
		return ErrLocked
	}
	expires := now.Add(ShareTokenTTL)
	q.ShareToken = &token
	q.ShareTokenExpiresAt = &expires
	q.Status = StatusSent
	if q.SentAt == nil {
		sent := now
		q.SentAt = &sent
	}
	q.UpdatedAt = now
	return nil
}

// CheckSignable reports whether the share link still accepts a signature at
// now. Expiry wins over the signed state, which wins over the paid lock.
func (q *Quote) CheckSignable(now time.Time) error {
	if q.ShareTokenExpiresAt != nil && q.ShareTokenExpiresAt.Before(now) {
		return ErrExpired
	}
	if q.SignedAt != nil {
		return ErrAlreadySigned
	}
	if q.IsPaid {
		return ErrLocked
	}
	return nil
}

// Sign records the signature evidence and moves the quote to Signed.
func (q *Quote) Sign(sig Signature, now time.Time) error {
	if err := q.CheckSignable(now); err != nil {
		return err
	}
	signed := now
	q.SignedAt = &signed
	q.SignatureData = &sig.SignatureData
	q.SignerName = &sig.SignerName
	q.SignerIP = &sig.SignerIP
	q.Status = StatusSigned
	q.UpdatedAt = now
	return nil
}

func parseDiscount(dtype string, value *decimal.Decimal) (money.Discount, error) {
	parsed, err := money.ParseDiscountType(dtype)
	if err != nil {
		return money.Discount{}, httpx.NewValidationError("discount_type", err.Error())
	}
	if value != nil {
		rounded := money.Round(*value)
		value = &rounded
	}
	d := money.Discount{Type: parsed, Value: value}
	if err := d.Validate(); err != nil {
		return money.Discount{}, httpx.NewValidationError("discount_value", err.Error())
	}
	return d, nil
}
