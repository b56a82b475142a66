package fiscal

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Repository reads paid quotes for fiscal reporting.
type Repository interface {
	// CollectedRevenue sums quote totals with is_paid and payment_date in [from, to).
	CollectedRevenue(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error)
	// PaidLedger lists paid quotes, most recent payment first.
	PaidLedger(ctx context.Context, userID string) ([]LedgerEntry, error)
}

// YearThreshold is the threshold report for one calendar year.
type YearThreshold struct {
	Year      int             `json:"year"`
	Collected decimal.Decimal `json:"collected"`
	ThresholdStatus
}

// Service exposes fiscal read models.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs the service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CurrentYear returns the calendar year of the service clock.
func (s *Service) CurrentYear() int {
	return s.now().Year()
}

// Threshold computes the franchise status for a year. Year zero means the current year.
func (s *Service) Threshold(ctx context.Context, userID string, status TaxStatus, year int) (YearThreshold, error) {
	if year == 0 {
		year = s.CurrentYear()
	}
	loc := s.now().Location()
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	to := from.AddDate(1, 0, 0)

	collected, err := s.repo.CollectedRevenue(ctx, userID, from, to)
	if err != nil {
		return YearThreshold{}, fmt.Errorf("fiscal: collected revenue: %w", err)
	}
	return YearThreshold{
		Year:            year,
		Collected:       collected,
		ThresholdStatus: ComputeThresholdStatus(collected, status),
	}, nil
}

// Ledger returns the livre des recettes entries.
func (s *Service) Ledger(ctx context.Context, userID string) ([]LedgerEntry, error) {
	entries, err := s.repo.PaidLedger(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fiscal: paid ledger: %w", err)
	}
	return entries, nil
}
