package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devisflow/devisflow/internal/platform/httpx"
	"github.com/devisflow/devisflow/internal/shared"
)

// Handler serves GET /dashboard/metrics.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the dashboard endpoint onto an authenticated router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard/metrics", h.Metrics)
}

func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	m, err := h.service.Metrics(r.Context(), user)
	if err != nil {
		h.logger.Error("dashboard metrics", slog.String("user_id", user.ID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}
