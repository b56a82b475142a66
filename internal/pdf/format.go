package pdf

import (
	"html/template"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var imageDataURI = regexp.MustCompile(`^data:image/(png|jpeg|gif|webp|svg\+xml);base64,[A-Za-z0-9+/]+={0,2}$`)

func newPrinter() *message.Printer {
	return message.NewPrinter(language.French)
}

func formatAmount(d decimal.Decimal, currency string) string {
	return newPrinter().Sprintf("%.2f", d.Round(2).InexactFloat64()) + " " + currencySymbol(currency)
}

func formatNumber(d decimal.Decimal) string {
	p := newPrinter()
	if d.Equal(d.Truncate(0)) {
		return p.Sprintf("%d", d.IntPart())
	}
	return p.Sprintf("%.2f", d.InexactFloat64())
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func currencySymbol(code string) string {
	switch code {
	case "EUR", "":
		return "€"
	}
	return code
}

// SignatureImage accepts a base64 image data URI for embedding in the
// document and returns "" for anything else.
func SignatureImage(data string) template.URL {
	if !imageDataURI.MatchString(data) {
		return ""
	}
	return template.URL(data)
}

var funcs = template.FuncMap{
	"amount": formatAmount,
	"qty":    formatNumber,
	"rate":   formatNumber,
	"date":   formatDate,
}
