package quotes

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
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devisflow/devisflow/internal/shared"
)

func newTestServer(t *testing.T, f *fixture, user *shared.User) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewPublicHandler(logger, f.svc).MountRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if user != nil {
					req = req.WithContext(shared.ContextWithUser(req.Context(), user))
				}
				next.ServeHTTP(w, req)
			})
		})
		NewHandler(logger, f.svc).MountRoutes(r)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func shareToken(t *testing.T, f *fixture, id uuid.UUID) string {
	t.Helper()
	share, err := f.svc.Share(context.Background(), f.owner.ID, id)
	require.NoError(t, err)
	return strings.TrimPrefix(share.ShareURL, "https://app.example.fr/sign/")
}

func TestHandlerCreateAndGet(t *testing.T) {
	f := newFixture(t)
	srv := newTestServer(t, f, f.owner)

	body := `{"client_id":"` + f.client.ID.String() + `","tax_rate":"20","items":[{"description":"Conseil","quantity":"2","unit_price":"125"}]}`
	resp := do(t, http.MethodPost, srv.URL+"/quotes", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created Quote
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, created.Total.Equal(dec("300")))

	resp = do(t, http.MethodGet, srv.URL+"/quotes/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/quotes?page=1&limit=5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list ListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Equal(t, 1, list.Total)
}

func TestHandlerStatusCodes(t *testing.T) {
	f := newFixture(t)
	srv := newTestServer(t, f, f.owner)
	q := f.createQuote(t)

	resp := do(t, http.MethodGet, srv.URL+"/quotes/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/quotes/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodPut, srv.URL+"/quotes/"+q.ID.String(), `{"status":"Archived"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPut, srv.URL+"/quotes/"+q.ID.String(), `{"is_paid":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPut, srv.URL+"/quotes/"+q.ID.String(), `{"notes":"too late"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
}

func TestHandlerRequiresUser(t *testing.T) {
	f := newFixture(t)
	srv := newTestServer(t, f, nil)

	resp := do(t, http.MethodGet, srv.URL+"/quotes", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandlerPDFDisposition(t *testing.T) {
	f := newFixture(t)
	srv := newTestServer(t, f, f.owner)
	q := f.createQuote(t)

	resp := do(t, http.MethodGet, srv.URL+"/quotes/"+q.ID.String()+"/pdf", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "inline"))

	resp = do(t, http.MethodPost, srv.URL+"/quotes/"+q.ID.String()+"/generate-pdf", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="`+q.QuoteNumber+`.pdf"`, resp.Header.Get("Content-Disposition"))
}

func TestPublicHandlerSignFlow(t *testing.T) {
	f := newFixture(t)
	srv := newTestServer(t, f, nil)
	q := f.createQuote(t)
	token := shareToken(t, f, q.ID)

	resp := do(t, http.MethodGet, srv.URL+"/public/quotes/"+token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/public/quotes/"+token+"/sign", `{"signer_name":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/public/quotes/"+token+"/sign",
		strings.NewReader(`{"signer_name":"Marie Curie","signature_data":"data:image/png;base64,AAAA"}`))
	require.NoError(t, err)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	signed, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer signed.Body.Close()
	require.Equal(t, http.StatusOK, signed.StatusCode)
	var sr SignResponse
	require.NoError(t, json.NewDecoder(signed.Body).Decode(&sr))
	assert.True(t, sr.Success)
	assert.Equal(t, "203.0.113.9", *f.repo.stored(q.ID).SignerIP)

	resp = do(t, http.MethodPost, srv.URL+"/public/quotes/"+token+"/sign", `{"signer_name":"Again","signature_data":"x"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/public/quotes/unknown", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPublicHandlerExpiredLink(t *testing.T) {
	f := newFixture(t)
	srv := newTestServer(t, f, nil)
	q := f.createQuote(t)
	token := shareToken(t, f, q.ID)
	f.advance(ShareTokenTTL + time.Hour)

	resp := do(t, http.MethodPost, srv.URL+"/public/quotes/"+token+"/sign", `{"signer_name":"Marie","signature_data":"x"}`)
	assert.Equal(t, http.StatusGone, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/public/quotes/"+token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/public/quotes/"+token+"/pdf", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", ClientIP(r))

	r.Header.Set("X-Forwarded-For", " 198.51.100.2 ,10.0.0.1")
	assert.Equal(t, "198.51.100.2", ClientIP(r))
}
