package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devisflow/devisflow/internal/platform/db"
)

// Repository persists clients, always scoped to their owner.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Create(ctx context.Context, c Client) error
	Get(ctx context.Context, userID string, id uuid.UUID) (*Client, error)
	List(ctx context.Context, userID string, limit, offset int) ([]Client, int, error)
	Update(ctx context.Context, userID string, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	CountQuotes(ctx context.Context, id uuid.UUID) (int, error)
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

const clientColumns = `id, user_id, name, email, company, phone, address, city, postal_code,
	country, vat_number, notes, created_at, updated_at`

// updatable lists the columns Update may set, in a stable order.
var updatable = []string{"name", "email", "company", "phone", "address", "city", "postal_code", "country", "vat_number", "notes"}

func (r *repository) Create(ctx context.Context, c Client) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, c.ID, c.UserID, c.Name, c.Email, c.Company, c.Phone, c.Address, c.City, c.PostalCode,
		c.Country, c.VATNumber, c.Notes, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *repository) Get(ctx context.Context, userID string, id uuid.UUID) (*Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *repository) List(ctx context.Context, userID string, limit, offset int) ([]Client, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE user_id = $1
		ORDER BY name, created_at
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	clients := make([]Client, 0, limit)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, *c)
	}
	return clients, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, userID string, id uuid.UUID, updates map[string]any) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{id, userID}
	for _, col := range updatable {
		v, ok := updates[col]
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	query := fmt.Sprintf("UPDATE clients SET %s WHERE id = $1 AND user_id = $2", strings.Join(sets, ", "))
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) CountQuotes(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotes WHERE client_id = $1`, id).Scan(&n)
	return n, err
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	var company, phone, address, city, postal, country, vat, notes pgtype.Text
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Email, &company, &phone, &address, &city, &postal,
		&country, &vat, &notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Company = textPtr(company)
	c.Phone = textPtr(phone)
	c.Address = textPtr(address)
	c.City = textPtr(city)
	c.PostalCode = textPtr(postal)
	c.Country = textPtr(country)
	c.VATNumber = textPtr(vat)
	c.Notes = textPtr(notes)
	return &c, nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
