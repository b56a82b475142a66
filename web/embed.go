// Package web embeds the HTML templates rendered to PDF.
package web

import "embed"

// Templates embeds the document templates.
//
//go:embed templates/*.html
var Templates embed.FS
