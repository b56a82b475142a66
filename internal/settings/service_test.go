package settings

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devisflow/devisflow/internal/fiscal"
	"github.com/devisflow/devisflow/internal/platform/httpx"
	"github.com/devisflow/devisflow/internal/shared"
)

type mockRepository struct {
	rows     map[string]Settings
	statuses map[string]fiscal.TaxStatus
}

func newMockRepository() *mockRepository {
	return &mockRepository{rows: map[string]Settings{}, statuses: map[string]fiscal.TaxStatus{}}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) Get(_ context.Context, userID string) (*Settings, error) {
	s, ok := m.rows[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if st, ok := m.statuses[userID]; ok {
		s.TaxStatus = st
	}
	return &s, nil
}

func (m *mockRepository) Insert(_ context.Context, s Settings) error {
	if _, ok := m.rows[s.UserID]; !ok {
		m.rows[s.UserID] = s
	}
	return nil
}

func (m *mockRepository) Update(_ context.Context, s Settings) error {
	m.rows[s.UserID] = s
	return nil
}

func (m *mockRepository) SetTaxStatus(_ context.Context, s Settings) error {
	m.statuses[s.UserID] = s.TaxStatus
	return nil
}

type countingCache struct{ n int }

func (c *countingCache) Bump(context.Context, string) error {
	c.n++
	return nil
}

func TestGetCreatesDefaults(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	user := &shared.User{ID: "u1", Name: "Jeanne Martin", Email: "jeanne@example.fr", TaxStatus: fiscal.TaxStatusFranchise}

	s, err := svc.Get(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, "Jeanne Martin", s.CompanyName)
	require.NotNil(t, s.CompanyEmail)
	assert.Equal(t, "jeanne@example.fr", *s.CompanyEmail)
	assert.Equal(t, "TVA non applicable, art. 293 B du CGI", s.VATExemptionText)
	assert.Equal(t, "3 fois le taux d'intérêt légal", s.LatePaymentPenalties)
	assert.True(t, s.DefaultTaxRate.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "EUR", s.DefaultCurrency)
	assert.Len(t, repo.rows, 1)
}

func TestDefaultsFallbackCompanyName(t *testing.T) {
	s := Defaults(&shared.User{ID: "u1"}, fixedTime())
	assert.Equal(t, DefaultCompanyName, s.CompanyName)
	assert.Nil(t, s.CompanyEmail)
	assert.Equal(t, fiscal.TaxStatusFranchise, s.TaxStatus)
}

func TestUpdateChangesTaxStatus(t *testing.T) {
	repo := newMockRepository()
	cache := &countingCache{}
	svc := NewService(repo, cache, nil)
	user := &shared.User{ID: "u1", Name: "Jeanne", TaxStatus: fiscal.TaxStatusFranchise}

	status := "ASSUJETTI"
	footer := "Merci pour votre confiance"
	s, err := svc.Update(context.Background(), user, UpdateSettingsRequest{TaxStatus: &status, PDFFooterText: &footer})
	require.NoError(t, err)

	assert.Equal(t, fiscal.TaxStatusAssujetti, s.TaxStatus)
	assert.Equal(t, fiscal.TaxStatusAssujetti, repo.statuses["u1"])
	require.NotNil(t, s.PDFFooterText)
	assert.Equal(t, footer, *s.PDFFooterText)
	assert.Equal(t, 1, cache.n)
}

type failingCache struct{}

func (failingCache) Bump(context.Context, string) error {
	return errors.New("redis down")
}

func TestUpdateLogsCacheInvalidationFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	svc := NewService(newMockRepository(), failingCache{}, logger)
	user := &shared.User{ID: "u1", Name: "Jeanne", TaxStatus: fiscal.TaxStatusFranchise}

	status := "ASSUJETTI"
	s, err := svc.Update(context.Background(), user, UpdateSettingsRequest{TaxStatus: &status})
	require.NoError(t, err)
	assert.Equal(t, fiscal.TaxStatusAssujetti, s.TaxStatus)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "invalidate dashboard cache")
	assert.Contains(t, out, "redis down")
	assert.Contains(t, out, "user_id=u1")
}

func TestUpdateRejectsInvalidRate(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	rate := decimal.NewFromInt(150)

	_, err := svc.Update(context.Background(), &shared.User{ID: "u1"}, UpdateSettingsRequest{DefaultTaxRate: &rate})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func fixedTime() time.Time {
	return time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
}
