package fiscalhttp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/devisflow/devisflow/internal/fiscal"
	"github.com/devisflow/devisflow/internal/platform/httpx"
	"github.com/devisflow/devisflow/internal/shared"
)

// FiscalService is the read contract used by the handler.
type FiscalService interface {
	Threshold(ctx context.Context, userID string, status fiscal.TaxStatus, year int) (fiscal.YearThreshold, error)
	Ledger(ctx context.Context, userID string) ([]fiscal.LedgerEntry, error)
}

// Handler serves the threshold monitor and the revenue ledger export.
type Handler struct {
	logger  *slog.Logger
	service FiscalService
	csvPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the fiscal HTTP handler.
func NewHandler(logger *slog.Logger, service FiscalService) *Handler {
	h := &Handler{logger: logger, service: service, now: time.Now}
	h.csvPool.New = func() any { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleThreshold(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 9999 {
			httpx.RespondError(w, httpx.NewValidationError("year", "must be a four digit year"))
			return
		}
		year = parsed
	}

	report, err := h.service.Threshold(r.Context(), user.ID, user.TaxStatus, year)
	if err != nil {
		h.logger.Error("fiscal threshold", slog.String("user_id", user.ID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleRevenueExport(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	entries, err := h.service.Ledger(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("revenue ledger", slog.String("user_id", user.ID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer h.csvPool.Put(buf)

	if err := fiscal.WriteLedgerCSV(buf, entries); err != nil {
		h.logger.Error("revenue ledger csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	filename := fmt.Sprintf("livre_recettes_%s.csv", h.now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
