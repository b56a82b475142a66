package quotes

import "github.com/go-chi/chi/v5"

// MountRoutes registers quote endpoints onto an authenticated router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/quotes", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Post("/{id}/share", h.Share)
		r.Get("/{id}/pdf", h.PDF)
		r.Post("/{id}/generate-pdf", h.GeneratePDF)
	})
}

// MountRoutes registers the public share-link endpoints. They sit outside
// the authenticated group.
func (h *PublicHandler) MountRoutes(r chi.Router) {
	r.Route("/public/quotes/{token}", func(r chi.Router) {
		r.Get("/", h.View)
		r.Post("/sign", h.Sign)
		r.Get("/pdf", h.PDF)
	})
}
