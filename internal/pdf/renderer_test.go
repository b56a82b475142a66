package pdf

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devisflow/devisflow/report"
)

type fakeConverter struct {
	html []byte
	err  error
}

func (f *fakeConverter) RenderHTML(_ context.Context, html []byte, _ report.PageOptions) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7"), nil
}

func sampleDocument() Document {
	return Document{
		Number:   "Q-1",
		IssuedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Currency: "EUR",
		Issuer:   Party{Name: "Atelier Dupont", Siret: "12345678900012"},
		Client:   Party{Name: "Marie Curie", Company: "Radium SARL", City: "Paris", PostalCode: "75005"},
		Lines: []Line{
			{Description: "Conseil", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(125), Total: decimal.NewFromInt(250)},
		},
		Subtotal:             decimal.NewFromInt(250),
		TaxRate:              decimal.NewFromInt(20),
		TaxAmount:            decimal.NewFromInt(50),
		Total:                decimal.NewFromInt(300),
		ChargesVAT:           true,
		LatePaymentPenalties: "Taux BCE + 10 points",
	}
}

func TestRendererHTMLFormatsFrenchAmounts(t *testing.T) {
	r, err := NewRenderer(&fakeConverter{}, nil, nil)
	require.NoError(t, err)

	html, err := r.HTML(context.Background(), sampleDocument())
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, "Q-1")
	assert.Contains(t, out, "05/03/2024")
	assert.Contains(t, out, "250,00 €")
	assert.Contains(t, out, "300,00 €")
	assert.Contains(t, out, "Radium SARL")
	assert.Contains(t, out, "30")
	assert.Contains(t, out, "40 €")
}

func TestRendererHTMLFranchiseShowsExemption(t *testing.T) {
	r, err := NewRenderer(&fakeConverter{}, nil, nil)
	require.NoError(t, err)

	doc := sampleDocument()
	doc.ChargesVAT = false
	doc.TaxRate = decimal.Zero
	doc.TaxAmount = decimal.Zero
	doc.Total = doc.Subtotal
	doc.VATExemptionText = "TVA non applicable, art. 293 B du CGI"

	html, err := r.HTML(context.Background(), doc)
	require.NoError(t, err)
	assert.Contains(t, string(html), "art. 293 B du CGI")
}

func TestRendererHTMLEmbedsSignature(t *testing.T) {
	r, err := NewRenderer(&fakeConverter{}, nil, nil)
	require.NoError(t, err)

	doc := sampleDocument()
	doc.Signature = &Signature{
		SignerName:   "Marie Curie",
		SignedAt:     time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC),
		ImageDataURI: SignatureImage("data:image/png;base64,iVBORw0KGgo="),
	}

	html, err := r.HTML(context.Background(), doc)
	require.NoError(t, err)
	assert.Contains(t, string(html), "data:image/png;base64,iVBORw0KGgo=")
	assert.Contains(t, string(html), "06/03/2024")
}

func TestRendererRenderWrapsConverterError(t *testing.T) {
	boom := errors.New("gotenberg down")
	r, err := NewRenderer(&fakeConverter{err: boom}, nil, nil)
	require.NoError(t, err)

	_, err = r.Render(context.Background(), sampleDocument())
	require.ErrorIs(t, err, boom)
}

func TestRendererRenderReturnsPDF(t *testing.T) {
	conv := &fakeConverter{}
	r, err := NewRenderer(conv, nil, nil)
	require.NoError(t, err)

	out, err := r.Render(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(out))
	assert.Contains(t, string(conv.html), "Conseil")
}

func TestRendererOmitsUnreachableLogo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r, err := NewRenderer(&fakeConverter{}, NewLogoFetcher(time.Second), nil)
	require.NoError(t, err)

	doc := sampleDocument()
	doc.LogoURL = srv.URL + "/logo.png"
	html, err := r.HTML(context.Background(), doc)
	require.NoError(t, err)
	assert.NotContains(t, string(html), "data:image")
}

func TestSignatureImageRejectsNonImages(t *testing.T) {
	assert.Empty(t, string(SignatureImage("javascript:alert(1)")))
	assert.Empty(t, string(SignatureImage("data:text/html;base64,PGI+")))
	assert.NotEmpty(t, string(SignatureImage("data:image/png;base64,AAAA")))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "2", formatNumber(decimal.NewFromInt(2)))
	assert.Equal(t, "5,50", formatNumber(decimal.RequireFromString("5.5")))
	assert.True(t, strings.HasSuffix(formatAmount(decimal.RequireFromString("1234.5"), "EUR"), "€"))
}
