package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/devisflow/devisflow/internal/fiscal"
	"github.com/devisflow/devisflow/internal/shared"
)

// ThresholdSource computes the franchise threshold report.
type ThresholdSource interface {
	Threshold(ctx context.Context, userID string, status fiscal.TaxStatus, year int) (fiscal.YearThreshold, error)
}

// Service assembles and caches dashboard metrics.
type Service struct {
	repo   Repository
	fiscal ThresholdSource
	cache  *Cache
	now    func() time.Time
}

// NewService wires the service. cache may be nil.
func NewService(repo Repository, threshold ThresholdSource, cache *Cache) *Service {
	return &Service{repo: repo, fiscal: threshold, cache: cache, now: time.Now}
}

// Metrics returns the dashboard of user. Results are cached until the next
// mutation bumps the user's version or the day changes.
func (s *Service) Metrics(ctx context.Context, user *shared.User) (*Metrics, error) {
	now := s.now()
	key, err := s.cache.BuildKey(ctx, user.ID, "metrics", string(user.TaxStatus), now.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("dashboard: cache key: %w", err)
	}
	var out Metrics
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.load(ctx, user, now)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) load(ctx context.Context, user *shared.User, now time.Time) (*Metrics, error) {
	m := &Metrics{}
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	quarter := (int(now.Month())-1)/3 + 1
	quarterStart := time.Date(now.Year(), time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, now.Location())
	m.FiscalRevenue.CurrentYear = now.Year()
	m.FiscalRevenue.CurrentQuarter = quarter

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m.TotalQuotes, err = s.repo.CountQuotes(ctx, user.ID)
		return wrap("count quotes", err)
	})
	g.Go(func() (err error) {
		m.TotalClients, err = s.repo.CountClients(ctx, user.ID)
		return wrap("count clients", err)
	})
	g.Go(func() (err error) {
		m.QuotesByStatus, err = s.repo.QuotesByStatus(ctx, user.ID)
		return wrap("quotes by status", err)
	})
	g.Go(func() (err error) {
		m.TotalsByCurrency, err = s.repo.AcceptedByCurrency(ctx, user.ID)
		return wrap("totals by currency", err)
	})
	g.Go(func() (err error) {
		m.MonthlyRevenue, err = s.repo.AcceptedByMonth(ctx, user.ID)
		return wrap("monthly revenue", err)
	})
	g.Go(func() (err error) {
		m.RecentQuotes, err = s.repo.RecentQuotes(ctx, user.ID, RecentLimit)
		return wrap("recent quotes", err)
	})
	g.Go(func() (err error) {
		m.FiscalRevenue.YearToDate, err = s.repo.AcceptedBetween(ctx, user.ID, yearStart, yearStart.AddDate(1, 0, 0))
		return wrap("year to date", err)
	})
	g.Go(func() (err error) {
		m.FiscalRevenue.QuarterToDate, err = s.repo.AcceptedBetween(ctx, user.ID, quarterStart, quarterStart.AddDate(0, 3, 0))
		return wrap("quarter to date", err)
	})
	g.Go(func() (err error) {
		m.Threshold, err = s.fiscal.Threshold(ctx, user.ID, user.TaxStatus, now.Year())
		return wrap("threshold", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("dashboard: %s: %w", what, err)
}
