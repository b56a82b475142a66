package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/devisflow/devisflow/internal/platform/db"
)

// Repository runs the aggregate queries behind the dashboard.
type Repository interface {
	CountQuotes(ctx context.Context, userID string) (int, error)
	CountClients(ctx context.Context, userID string) (int, error)
	QuotesByStatus(ctx context.Context, userID string) ([]StatusCount, error)
	AcceptedByCurrency(ctx context.Context, userID string) ([]CurrencyTotal, error)
	AcceptedByMonth(ctx context.Context, userID string) ([]MonthlyRevenue, error)
	RecentQuotes(ctx context.Context, userID string, limit int) ([]RecentQuote, error)
	// AcceptedBetween sums accepted quotes created in [from, to).
	AcceptedBetween(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error)
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) CountQuotes(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotes WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *repository) CountClients(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *repository) QuotesByStatus(ctx context.Context, userID string) ([]StatusCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT status, COUNT(*)
		FROM quotes
		WHERE user_id = $1
		GROUP BY status
		ORDER BY status
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []StatusCount{}
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *repository) AcceptedByCurrency(ctx context.Context, userID string) ([]CurrencyTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT currency, COALESCE(SUM(total), 0)
		FROM quotes
		WHERE user_id = $1 AND status = 'Accepted'
		GROUP BY currency
		ORDER BY currency
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CurrencyTotal{}
	for rows.Next() {
		var ct CurrencyTotal
		if err := rows.Scan(&ct.Currency, &ct.Total); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (r *repository) AcceptedByMonth(ctx context.Context, userID string) ([]MonthlyRevenue, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date_trunc('month', created_at) AS month, COALESCE(SUM(total), 0)
		FROM quotes
		WHERE user_id = $1 AND status = 'Accepted'
		GROUP BY month
		ORDER BY month
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MonthlyRevenue{}
	for rows.Next() {
		var (
			month time.Time
			mr    MonthlyRevenue
		)
		if err := rows.Scan(&month, &mr.Total); err != nil {
			return nil, err
		}
		mr.Month = month.Format("2006-01")
		mr.Name = month.Format("Jan")
		out = append(out, mr)
	}
	return out, rows.Err()
}

func (r *repository) RecentQuotes(ctx context.Context, userID string, limit int) ([]RecentQuote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quote_number, status, currency, total, created_at
		FROM quotes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RecentQuote{}
	for rows.Next() {
		var rq RecentQuote
		if err := rows.Scan(&rq.ID, &rq.QuoteNumber, &rq.Status, &rq.Currency, &rq.Total, &rq.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rq)
	}
	return out, rows.Err()
}

func (r *repository) AcceptedBetween(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0)
		FROM quotes
		WHERE user_id = $1 AND status = 'Accepted' AND created_at >= $2 AND created_at < $3
	`, userID, from, to).Scan(&total)
	return total, err
}
