package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsHandlerExposesQuoteEvents(t *testing.T) {
	metrics := NewMetrics()
	metrics.QuoteEvent(EventSigned)
	metrics.QuoteEvent(EventSigned)

	body := scrape(t, metrics)
	assert.Contains(t, body, `devisflow_quote_events_total{event="signed"} 2`)
	assert.Contains(t, body, `devisflow_quote_events_total{event="created"} 0`)
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `devisflow_http_requests_total{code="418",route="/test"} 1`)
	assert.True(t, strings.Contains(body, `devisflow_http_request_duration_seconds_bucket{route="/test"`))
}

func TestCacheLookupCounts(t *testing.T) {
	metrics := NewMetrics()
	metrics.CacheLookup("dashboard", true)
	metrics.CacheLookup("dashboard", false)

	body := scrape(t, metrics)
	assert.Contains(t, body, `devisflow_cache_lookups_total{cache="dashboard",result="hit"} 1`)
	assert.Contains(t, body, `devisflow_cache_lookups_total{cache="dashboard",result="miss"} 1`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.QuoteEvent(EventCreated)
	m.CacheLookup("dashboard", true)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
