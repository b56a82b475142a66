package audithttp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devisflow/devisflow/internal/audit"
	"github.com/devisflow/devisflow/internal/shared"
)

type stubService struct {
	filters audit.TimelineFilters
	rows    []audit.TimelineRow
}

func (s *stubService) Timeline(_ context.Context, f audit.TimelineFilters) (audit.Result, error) {
	s.filters = f
	return audit.Result{Rows: s.rows, Paging: audit.PagingInfo{Page: 1, PageSize: 20}}, nil
}

func (s *stubService) Export(_ context.Context, f audit.TimelineFilters) ([]audit.TimelineRow, error) {
	s.filters = f
	return s.rows, nil
}

func newTestRouter(svc *stubService, user *shared.User) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if user != nil {
				req = req.WithContext(shared.ContextWithUser(req.Context(), user))
			}
			next.ServeHTTP(w, req)
		})
	})
	NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).MountRoutes(r)
	return r
}

func TestTimelineScopesToCurrentUser(t *testing.T) {
	svc := &stubService{rows: []audit.TimelineRow{{Action: "quote.signed", Entity: "quote", EntityID: "q-1"}}}
	router := newTestRouter(svc, &shared.User{ID: "user-1"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit?entity=quote&entity_id=q-1&from=2024-01-01&to=2024-01-31&page=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "user-1", svc.filters.ActorID)
	assert.Equal(t, "q-1", svc.filters.EntityID)
	assert.Equal(t, 2, svc.filters.Page)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), svc.filters.To)

	var res audit.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "quote.signed", res.Rows[0].Action)
}

func TestTimelineRejectsBadFilters(t *testing.T) {
	router := newTestRouter(&stubService{}, &shared.User{ID: "user-1"})
	for _, query := range []string{"from=yesterday", "page=0", "from=2024-02-01&to=2024-01-01", "from=2022-01-01&to=2024-01-01"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit?"+query, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestTimelineRequiresUser(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExportWritesCSV(t *testing.T) {
	svc := &stubService{rows: []audit.TimelineRow{{
		At:       time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Action:   "quote.signed",
		Entity:   "quote",
		EntityID: "q-1",
		Meta:     map[string]any{"signer_name": "Marie"},
	}}}
	rec := httptest.NewRecorder()
	newTestRouter(svc, &shared.User{ID: "user-1"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/export.csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "at,action,entity,entity_id,meta", lines[0])
	assert.Contains(t, lines[1], "2024-03-01T10:00:00Z,quote.signed,quote,q-1,")
	assert.Contains(t, lines[1], "signer_name")
}
