package quotes

import (
	"github.com/devisflow/devisflow/internal/clients"
	"github.com/devisflow/devisflow/internal/pdf"
	"github.com/devisflow/devisflow/internal/settings"
	"github.com/devisflow/devisflow/internal/shared"
)

// buildDocument assembles the printable view of q. Company settings win over
// the owner's profile; the owner's profile fills what settings leave empty.
func buildDocument(q *Quote, client *clients.Client, st *settings.Settings, owner *shared.User) pdf.Document {
	doc := pdf.Document{
		Number:       q.QuoteNumber,
		IssuedAt:     q.CreatedAt,
		ValidityDays: pdf.DefaultValidityDays,
		Currency:     string(q.Currency),
		Issuer: pdf.Party{
			Name:    issuerName(st, owner),
			Address: firstOf(st.CompanyAddress, owner.Address),
			Email:   firstOf(st.CompanyEmail, &owner.Email),
			Phone:   deref(st.CompanyPhone),
			Website: deref(st.CompanyWebsite),
			Siret:   firstOf(st.CompanySiret, owner.Siret),
		},
		LogoURL: firstOf(st.CompanyLogoURL, owner.LogoURL),
		Client: pdf.Party{
			Name:       client.Name,
			Company:    deref(client.Company),
			Address:    deref(client.Address),
			PostalCode: deref(client.PostalCode),
			City:       deref(client.City),
			Email:      client.Email,
			VATNumber:  deref(client.VATNumber),
		},
		Subtotal:             q.Subtotal,
		Discount:             q.Totals().Discount,
		TaxRate:              q.TaxRate,
		TaxAmount:            q.TaxAmount,
		Total:                q.Total,
		ChargesVAT:           q.TaxStatus.ChargesVAT(),
		VATExemptionText:     st.VATExemptionText,
		LatePaymentPenalties: st.LatePaymentPenalties,
		Notes:                deref(q.Notes),
		PaymentTerms:         deref(q.PaymentTerms),
		Footer:               deref(st.PDFFooterText),
	}
	for _, it := range q.SortedItems() {
		doc.Lines = append(doc.Lines, pdf.Line{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	if q.SignedAt != nil {
		doc.Signature = &pdf.Signature{
			SignerName:   deref(q.SignerName),
			SignedAt:     *q.SignedAt,
			ImageDataURI: pdf.SignatureImage(deref(q.SignatureData)),
		}
	}
	return doc
}

func issuerName(st *settings.Settings, owner *shared.User) string {
	if st.CompanyName != "" && st.CompanyName != settings.DefaultCompanyName {
		return st.CompanyName
	}
	if name := deref(owner.BusinessName); name != "" {
		return name
	}
	if owner.Name != "" {
		return owner.Name
	}
	return st.CompanyName
}

func firstOf(values ...*string) string {
	for _, v := range values {
		if s := deref(v); s != "" {
			return s
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
