package audithttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/devisflow/devisflow/internal/shared"
)

const (
	exportRateLimit  = 10
	exportRateWindow = time.Minute
)

// MountRoutes registers the timeline and its CSV export onto an authenticated router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(exportRateLimit, exportRateWindow,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)
	r.Get("/audit", h.handleTimeline)
	r.With(limiter).Get("/audit/export.csv", h.handleExport)
}

func rateLimitKey(r *http.Request) (string, error) {
	if user := shared.UserFromContext(r.Context()); user != nil {
		return "user:" + user.ID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
