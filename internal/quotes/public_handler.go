package quotes

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/devisflow/devisflow/internal/platform/httpx"
)

// PublicHandler serves the unauthenticated share-link endpoints. The token
// is the only credential.
type PublicHandler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewPublicHandler(logger *slog.Logger, service *Service) *PublicHandler {
	return &PublicHandler{logger: logger, service: service, validate: httpx.NewValidator()}
}

func (h *PublicHandler) View(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.PublicView(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.fail(w, "public quote view", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *PublicHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var req SignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validate, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	resp, err := h.service.Sign(r.Context(), chi.URLParam(r, "token"), req, ClientIP(r))
	if err != nil {
		h.fail(w, "sign quote", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *PublicHandler) PDF(w http.ResponseWriter, r *http.Request) {
	out, q, err := h.service.PublicPDF(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.fail(w, "public quote pdf", err)
		return
	}
	writePDF(w, out, "inline", q.QuoteNumber)
}

func (h *PublicHandler) fail(w http.ResponseWriter, msg string, err error) {
	h.logger.Warn(msg, slog.Any("error", err))
	httpx.RespondError(w, err)
}

// ClientIP returns the first X-Forwarded-For entry, else the remote address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
