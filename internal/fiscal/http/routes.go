// Package fiscalhttp exposes the fiscal read models over HTTP.
package fiscalhttp

import "github.com/go-chi/chi/v5"

// MountRoutes registers fiscal endpoints onto an authenticated router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/fiscal/threshold", h.handleThreshold)
	r.Get("/export/revenue", h.handleRevenueExport)
}
