package fiscal

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CollectedRevenue(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0)
		FROM quotes
		WHERE user_id = $1 AND is_paid AND payment_date >= $2 AND payment_date < $3
	`, userID, from, to).Scan(&total)
	return total, err
}

func (r *repository) PaidLedger(ctx context.Context, userID string) ([]LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT q.payment_date, q.quote_number, COALESCE(c.name, ''), q.subtotal, q.tax_amount, q.total
		FROM quotes q
		LEFT JOIN clients c ON c.id = q.client_id
		WHERE q.user_id = $1 AND q.is_paid
		ORDER BY q.payment_date DESC NULLS LAST, q.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.PaymentDate, &e.QuoteNumber, &e.ClientName, &e.Subtotal, &e.TaxAmount, &e.Total); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
