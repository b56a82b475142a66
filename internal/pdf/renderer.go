package pdf

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/devisflow/devisflow/report"
	"github.com/devisflow/devisflow/web"
)

// HTMLConverter turns an HTML document into PDF bytes.
type HTMLConverter interface {
	RenderHTML(ctx context.Context, html []byte, opts report.PageOptions) ([]byte, error)
}

// Renderer produces quote PDFs.
type Renderer struct {
	converter HTMLConverter
	logos     *LogoFetcher
	tmpl      *template.Template
	logger    *slog.Logger
}

type view struct {
	Document
	LogoDataURI template.URL
}

// NewRenderer parses the embedded quote template.
func NewRenderer(converter HTMLConverter, logos *LogoFetcher, logger *slog.Logger) (*Renderer, error) {
	tmpl, err := template.New("quote.html").Funcs(funcs).ParseFS(web.Templates, "templates/quote.html")
	if err != nil {
		return nil, fmt.Errorf("pdf: parse template: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{converter: converter, logos: logos, tmpl: tmpl, logger: logger}, nil
}

// HTML renders the document markup. A logo that cannot be fetched in time is
// left out.
func (r *Renderer) HTML(ctx context.Context, doc Document) ([]byte, error) {
	if doc.ValidityDays == 0 {
		doc.ValidityDays = DefaultValidityDays
	}
	v := view{Document: doc}
	if doc.LogoURL != "" && r.logos != nil {
		uri, err := r.logos.Fetch(ctx, doc.LogoURL)
		if err != nil {
			r.logger.Warn("pdf logo omitted", slog.String("quote_number", doc.Number), slog.Any("error", err))
		} else {
			v.LogoDataURI = uri
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("pdf: execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// Render returns the PDF bytes of doc.
func (r *Renderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	html, err := r.HTML(ctx, doc)
	if err != nil {
		return nil, err
	}
	out, err := r.converter.RenderHTML(ctx, html, report.A4)
	if err != nil {
		return nil, fmt.Errorf("pdf: convert: %w", err)
	}
	return out, nil
}
