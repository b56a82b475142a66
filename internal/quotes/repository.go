package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/devisflow/devisflow/internal/fiscal"
	"github.com/devisflow/devisflow/internal/money"
	"github.com/devisflow/devisflow/internal/platform/db"
	"github.com/devisflow/devisflow/internal/platform/httpx"
	"github.com/devisflow/devisflow/internal/shared"
)

const quoteNumberConstraint = "quotes_user_id_quote_number_key"

// Repository persists quote aggregates. Reads are always scoped to the owner,
// except the share-token lookups used by the public flow.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Insert(ctx context.Context, q *Quote) error
	Get(ctx context.Context, userID string, id uuid.UUID) (*Quote, error)
	// GetForUpdate locks the quote row until the transaction ends.
	GetForUpdate(ctx context.Context, userID string, id uuid.UUID) (*Quote, error)
	GetByToken(ctx context.Context, token string) (*Quote, error)
	GetByTokenForUpdate(ctx context.Context, token string) (*Quote, error)
	List(ctx context.Context, userID string, limit, offset int) ([]Quote, int, error)
	UpdateHeader(ctx context.Context, q *Quote) error
	SaveItems(ctx context.Context, quoteID uuid.UUID, items []Item, removed []uuid.UUID) error
	// MarkSigned stores the signature unless one was recorded concurrently.
	MarkSigned(ctx context.Context, q *Quote) error
	RecordEvent(ctx context.Context, log shared.AuditLog) error
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const quoteColumns = `id, user_id, client_id, quote_number, status, currency,
	subtotal, discount_type, discount_value, tax_rate, tax_amount, total, tax_status,
	notes, payment_terms, is_paid, payment_date,
	share_token, share_token_expires_at, signed_at, signature_data, signer_name, signer_ip,
	created_at, sent_at, updated_at`

func (r *repository) Insert(ctx context.Context, q *Quote) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO quotes (`+quoteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26)
	`, q.ID, q.UserID, q.ClientID, q.QuoteNumber, q.Status, q.Currency,
		q.Subtotal, q.DiscountType, q.DiscountValue, q.TaxRate, q.TaxAmount, q.Total, q.TaxStatus,
		q.Notes, q.PaymentTerms, q.IsPaid, q.PaymentDate,
		q.ShareToken, q.ShareTokenExpiresAt, q.SignedAt, q.SignatureData, q.SignerName, q.SignerIP,
		q.CreatedAt, q.SentAt, q.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	return r.SaveItems(ctx, q.ID, q.Items, nil)
}

func (r *repository) Get(ctx context.Context, userID string, id uuid.UUID) (*Quote, error) {
	return r.getOne(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *repository) GetForUpdate(ctx context.Context, userID string, id uuid.UUID) (*Quote, error) {
	return r.getOne(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID)
}

func (r *repository) GetByToken(ctx context.Context, token string) (*Quote, error) {
	return r.getOne(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE share_token = $1`, token)
}

func (r *repository) GetByTokenForUpdate(ctx context.Context, token string) (*Quote, error) {
	return r.getOne(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE share_token = $1 FOR UPDATE`, token)
}

func (r *repository) getOne(ctx context.Context, query string, args ...any) (*Quote, error) {
	q, err := scanQuote(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	items, err := r.loadItems(ctx, []uuid.UUID{q.ID})
	if err != nil {
		return nil, err
	}
	attachItems(q, items)
	return q, nil
}

func (r *repository) List(ctx context.Context, userID string, limit, offset int) ([]Quote, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotes WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quotes: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	quotes := make([]Quote, 0, limit)
	ids := make([]uuid.UUID, 0, limit)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, 0, err
		}
		quotes = append(quotes, *q)
		ids = append(ids, q.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range quotes {
		attachItems(&quotes[i], items)
	}
	return quotes, total, nil
}

func (r *repository) UpdateHeader(ctx context.Context, q *Quote) error {
	_, err := r.db.Exec(ctx, `
		UPDATE quotes SET
			client_id = $2, quote_number = $3, status = $4, currency = $5,
			subtotal = $6, discount_type = $7, discount_value = $8, tax_rate = $9,
			tax_amount = $10, total = $11, notes = $12, payment_terms = $13,
			is_paid = $14, payment_date = $15, share_token = $16, share_token_expires_at = $17,
			sent_at = $18, updated_at = $19
		WHERE id = $1
	`, q.ID, q.ClientID, q.QuoteNumber, q.Status, q.Currency,
		q.Subtotal, q.DiscountType, q.DiscountValue, q.TaxRate,
		q.TaxAmount, q.Total, q.Notes, q.PaymentTerms,
		q.IsPaid, q.PaymentDate, q.ShareToken, q.ShareTokenExpiresAt,
		q.SentAt, q.UpdatedAt)
	return mapWriteError(err)
}

func (r *repository) SaveItems(ctx context.Context, quoteID uuid.UUID, items []Item, removed []uuid.UUID) error {
	if len(removed) > 0 {
		if _, err := r.db.Exec(ctx, `DELETE FROM quote_items WHERE quote_id = $1 AND id = ANY($2)`, quoteID, removed); err != nil {
			return fmt.Errorf("delete quote items: %w", err)
		}
	}
	for _, it := range items {
		_, err := r.db.Exec(ctx, `
			INSERT INTO quote_items (id, quote_id, description, quantity, unit_price, total, "order")
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				description = EXCLUDED.description,
				quantity = EXCLUDED.quantity,
				unit_price = EXCLUDED.unit_price,
				total = EXCLUDED.total,
				"order" = EXCLUDED."order"
		`, it.ID, quoteID, it.Description, it.Quantity, it.UnitPrice, it.Total, it.Order)
		if err != nil {
			return fmt.Errorf("upsert quote item: %w", err)
		}
	}
	return nil
}

func (r *repository) MarkSigned(ctx context.Context, q *Quote) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotes SET
			signed_at = $2, signature_data = $3, signer_name = $4, signer_ip = $5,
			status = $6, updated_at = $7
		WHERE id = $1 AND signed_at IS NULL
	`, q.ID, q.SignedAt, q.SignatureData, q.SignerName, q.SignerIP, q.Status, q.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadySigned
	}
	return nil
}

func (r *repository) RecordEvent(ctx context.Context, log shared.AuditLog) error {
	return shared.RecordAudit(ctx, r.db, log)
}

func (r *repository) loadItems(ctx context.Context, quoteIDs []uuid.UUID) (map[uuid.UUID][]Item, error) {
	out := make(map[uuid.UUID][]Item, len(quoteIDs))
	if len(quoteIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, quote_id, description, quantity, unit_price, total, "order"
		FROM quote_items
		WHERE quote_id = ANY($1)
		ORDER BY "order", id
	`, quoteIDs)
	if err != nil {
		return nil, fmt.Errorf("load quote items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.QuoteID, &it.Description, &it.Quantity, &it.UnitPrice, &it.Total, &it.Order); err != nil {
			return nil, err
		}
		out[it.QuoteID] = append(out[it.QuoteID], it)
	}
	return out, rows.Err()
}

// attachItems sets the loaded items of q. A quote without items keeps the
// empty slice from scanQuote.
func attachItems(q *Quote, items map[uuid.UUID][]Item) {
	if its, ok := items[q.ID]; ok {
		q.Items = its
	}
}

func scanQuote(row pgx.Row) (*Quote, error) {
	var (
		q             Quote
		status        string
		currency      string
		discountType  string
		taxStatus     string
		discountValue decimal.NullDecimal
		paymentDate   *time.Time
	)
	err := row.Scan(
		&q.ID, &q.UserID, &q.ClientID, &q.QuoteNumber, &status, &currency,
		&q.Subtotal, &discountType, &discountValue, &q.TaxRate, &q.TaxAmount, &q.Total, &taxStatus,
		&q.Notes, &q.PaymentTerms, &q.IsPaid, &paymentDate,
		&q.ShareToken, &q.ShareTokenExpiresAt, &q.SignedAt, &q.SignatureData, &q.SignerName, &q.SignerIP,
		&q.CreatedAt, &q.SentAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	q.Status = Status(status)
	q.Currency = Currency(currency)
	q.DiscountType = money.DiscountType(discountType)
	q.TaxStatus = fiscal.TaxStatus(taxStatus)
	if discountValue.Valid {
		v := discountValue.Decimal
		q.DiscountValue = &v
	}
	q.PaymentDate = paymentDate
	q.Items = []Item{}
	return &q, nil
}

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err, quoteNumberConstraint) {
		return httpx.NewValidationError("quote_number", "already used by another quote")
	}
	return err
}
