// Package dashboard serves the per-user overview of quotes, clients and revenue.
package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devisflow/devisflow/internal/fiscal"
)

// RecentLimit is the number of quotes listed under recent_quotes.
const RecentLimit = 5

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type CurrencyTotal struct {
	Currency string          `json:"currency"`
	Total    decimal.Decimal `json:"total"`
}

type RecentQuote struct {
	ID          uuid.UUID       `json:"id"`
	QuoteNumber string          `json:"quote_number"`
	Status      string          `json:"status"`
	Currency    string          `json:"currency"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MonthlyRevenue is the accepted total of quotes created in one month.
type MonthlyRevenue struct {
	Month string          `json:"month"`
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// FiscalRevenue is the accepted total of the current year and quarter.
type FiscalRevenue struct {
	YearToDate     decimal.Decimal `json:"year_to_date"`
	QuarterToDate  decimal.Decimal `json:"quarter_to_date"`
	CurrentYear    int             `json:"current_year"`
	CurrentQuarter int             `json:"current_quarter"`
}

// Metrics is the payload of GET /dashboard/metrics.
type Metrics struct {
	TotalQuotes      int                  `json:"total_quotes"`
	TotalClients     int                  `json:"total_clients"`
	QuotesByStatus   []StatusCount        `json:"quotes_by_status"`
	TotalsByCurrency []CurrencyTotal      `json:"totals_by_currency"`
	RecentQuotes     []RecentQuote        `json:"recent_quotes"`
	MonthlyRevenue   []MonthlyRevenue     `json:"monthly_revenue"`
	FiscalRevenue    FiscalRevenue        `json:"fiscal_revenue"`
	Threshold        fiscal.YearThreshold `json:"threshold"`
}
