package quotes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/devisflow/devisflow/internal/platform/httpx"
	"github.com/devisflow/devisflow/internal/shared"
)

// Handler serves the authenticated /quotes endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: httpx.NewValidator()}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	page, limit := shared.PageParams(r)
	p := shared.NewPagination(page, limit, 0)
	quotes, total, err := h.service.List(r.Context(), user.ID, p.PerPage, p.Offset())
	if err != nil {
		h.fail(w, "list quotes", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListResponse{Quotes: quotes, Total: total})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	var req CreateQuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validate, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	q, err := h.service.Create(r.Context(), user, req)
	if err != nil {
		h.fail(w, "create quote", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	id, ok := quoteID(w, r)
	if !ok {
		return
	}
	q, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		h.fail(w, "get quote", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	id, ok := quoteID(w, r)
	if !ok {
		return
	}
	var req UpdateQuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validate, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	q, err := h.service.Update(r.Context(), user, id, req)
	if err != nil {
		h.fail(w, "update quote", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	id, ok := quoteID(w, r)
	if !ok {
		return
	}
	resp, err := h.service.Share(r.Context(), user.ID, id)
	if err != nil {
		h.fail(w, "share quote", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	h.servePDF(w, r, "inline")
}

func (h *Handler) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	h.servePDF(w, r, "attachment")
}

func (h *Handler) servePDF(w http.ResponseWriter, r *http.Request, disposition string) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	id, ok := quoteID(w, r)
	if !ok {
		return
	}
	out, q, err := h.service.RenderPDF(r.Context(), user, id)
	if err != nil {
		h.fail(w, "render quote pdf", err)
		return
	}
	writePDF(w, out, disposition, q.QuoteNumber)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.Any("error", err))
	httpx.RespondError(w, err)
}

func quoteID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func writePDF(w http.ResponseWriter, body []byte, disposition, number string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, number+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
