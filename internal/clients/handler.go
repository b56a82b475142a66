package clients

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/devisflow/devisflow/internal/platform/httpx"
	"github.com/devisflow/devisflow/internal/shared"
)

// Handler serves the /clients endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: httpx.NewValidator()}
}

// MountRoutes registers client endpoints onto an authenticated router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	page, limit := shared.PageParams(r)
	p := shared.NewPagination(page, limit, 0)
	clients, total, err := h.service.List(r.Context(), user.ID, p.PerPage, p.Offset())
	if err != nil {
		h.fail(w, "list clients", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListResponse{Clients: clients, Total: total})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	var req CreateClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validate, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	client, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		h.fail(w, "create client", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	client, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		h.fail(w, "get client", err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	var req UpdateClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validate, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	client, err := h.service.Update(r.Context(), user.ID, id, req)
	if err != nil {
		h.fail(w, "update client", err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), user.ID, id); err != nil {
		h.fail(w, "delete client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.Any("error", err))
	httpx.RespondError(w, err)
}

func clientID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		// Malformed ids cannot exist.
		httpx.RespondError(w, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}
