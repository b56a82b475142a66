package audithttp

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devisflow/devisflow/internal/audit"
	"github.com/devisflow/devisflow/internal/platform/httpx"
	"github.com/devisflow/devisflow/internal/shared"
)

const maxDateRange = 366 * 24 * time.Hour

// TimelineService defines the business contract for timeline data.
type TimelineService interface {
	Timeline(ctx context.Context, filters audit.TimelineFilters) (audit.Result, error)
	Export(ctx context.Context, filters audit.TimelineFilters) ([]audit.TimelineRow, error)
}

// Handler serves the activity timeline of the current user.
type Handler struct {
	logger  *slog.Logger
	service TimelineService
}

// NewHandler creates the audit handler.
func NewHandler(logger *slog.Logger, service TimelineService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	filters, err := parseFilters(r, user.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("load audit timeline", slog.String("user_id", user.ID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	filters, err := parseFilters(r, user.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.logger.Error("export audit timeline", slog.String("user_id", user.ID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-timeline.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"at", "action", "entity", "entity_id", "meta"})
	for _, row := range rows {
		meta := ""
		if len(row.Meta) > 0 {
			raw, err := json.Marshal(row.Meta)
			if err == nil {
				meta = string(raw)
			}
		}
		_ = cw.Write([]string{row.At.Format(time.RFC3339), row.Action, row.Entity, row.EntityID, meta})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func parseFilters(r *http.Request, actorID string) (audit.TimelineFilters, error) {
	q := r.URL.Query()
	filters := audit.TimelineFilters{
		ActorID:  actorID,
		Entity:   strings.TrimSpace(q.Get("entity")),
		EntityID: strings.TrimSpace(q.Get("entity_id")),
		Action:   strings.TrimSpace(q.Get("action")),
	}

	var err error
	if filters.From, err = parseDate(q.Get("from")); err != nil {
		return filters, httpx.NewValidationError("from", "expected YYYY-MM-DD")
	}
	if filters.To, err = parseDate(q.Get("to")); err != nil {
		return filters, httpx.NewValidationError("to", "expected YYYY-MM-DD")
	}
	if !filters.To.IsZero() {
		// Inclusive end date.
		filters.To = filters.To.AddDate(0, 0, 1)
	}
	if !filters.From.IsZero() && !filters.To.IsZero() {
		if !filters.From.Before(filters.To) {
			return filters, httpx.NewValidationError("range", "from must not be after to")
		}
		if filters.To.Sub(filters.From) > maxDateRange {
			return filters, httpx.NewValidationError("range", "at most one year")
		}
	}

	if v := strings.TrimSpace(q.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page <= 0 {
			return filters, httpx.NewValidationError("page", "must be a positive integer")
		}
		filters.Page = page
	}
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return filters, httpx.NewValidationError("page_size", "must be a positive integer")
		}
		filters.PageSize = size
	}
	return filters, nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}
