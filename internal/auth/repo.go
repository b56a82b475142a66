package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devisflow/devisflow/internal/fiscal"
	"github.com/devisflow/devisflow/internal/platform/db"
	"github.com/devisflow/devisflow/internal/shared"
)

// Repository reads sessions and users.
type Repository interface {
	FindSession(ctx context.Context, token string) (*Session, error)
	FindUser(ctx context.Context, id string) (*shared.User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindSession fetches a session by token.
func (r *PGRepository) FindSession(ctx context.Context, token string) (*Session, error) {
	var s Session
	var expires pgtype.Timestamptz
	err := r.pool.QueryRow(ctx, `SELECT token, user_id, expires_at FROM sessions WHERE token = $1`, token).
		Scan(&s.Token, &s.UserID, &expires)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	// Naive timestamps are stored as UTC.
	s.ExpiresAt = expires.Time.UTC()
	return &s, nil
}

// FindUser fetches the user fields the application relies on.
func (r *PGRepository) FindUser(ctx context.Context, id string) (*shared.User, error) {
	var u shared.User
	var taxStatus string
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, name, business_name, siret, address, logo_url, tax_status
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.Name, &u.BusinessName, &u.Siret, &u.Address, &u.LogoURL, &taxStatus)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.TaxStatus = fiscal.TaxStatus(taxStatus)
	if u.TaxStatus == "" {
		u.TaxStatus = fiscal.TaxStatusFranchise
	}
	return &u, nil
}

var _ Repository = (*PGRepository)(nil)
