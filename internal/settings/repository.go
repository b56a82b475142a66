package settings

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devisflow/devisflow/internal/fiscal"
	"github.com/devisflow/devisflow/internal/platform/db"
)

// Repository persists settings rows and the user's tax status.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, userID string) (*Settings, error)
	Insert(ctx context.Context, s Settings) error
	Update(ctx context.Context, s Settings) error
	SetTaxStatus(ctx context.Context, s Settings) error
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

func (r *repository) Get(ctx context.Context, userID string) (*Settings, error) {
	var s Settings
	var taxStatus string
	err := r.db.QueryRow(ctx, `
		SELECT s.user_id, s.company_name, s.company_address, s.company_email, s.company_phone,
			s.company_website, s.company_siret, s.company_logo_url, s.pdf_footer_text,
			s.vat_exemption_text, s.late_payment_penalties, s.default_currency, s.default_tax_rate,
			u.tax_status, s.created_at, s.updated_at
		FROM settings s
		JOIN users u ON u.id = s.user_id
		WHERE s.user_id = $1
	`, userID).Scan(
		&s.UserID, &s.CompanyName, &s.CompanyAddress, &s.CompanyEmail, &s.CompanyPhone,
		&s.CompanyWebsite, &s.CompanySiret, &s.CompanyLogoURL, &s.PDFFooterText,
		&s.VATExemptionText, &s.LatePaymentPenalties, &s.DefaultCurrency, &s.DefaultTaxRate,
		&taxStatus, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.TaxStatus = fiscal.TaxStatus(taxStatus)
	return &s, nil
}

func (r *repository) Insert(ctx context.Context, s Settings) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (user_id, company_name, company_address, company_email, company_phone,
			company_website, company_siret, company_logo_url, pdf_footer_text,
			vat_exemption_text, late_payment_penalties, default_currency, default_tax_rate,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (user_id) DO NOTHING
	`, s.UserID, s.CompanyName, s.CompanyAddress, s.CompanyEmail, s.CompanyPhone,
		s.CompanyWebsite, s.CompanySiret, s.CompanyLogoURL, s.PDFFooterText,
		s.VATExemptionText, s.LatePaymentPenalties, s.DefaultCurrency, s.DefaultTaxRate,
		s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *repository) Update(ctx context.Context, s Settings) error {
	_, err := r.db.Exec(ctx, `
		UPDATE settings SET
			company_name = $2, company_address = $3, company_email = $4, company_phone = $5,
			company_website = $6, company_siret = $7, company_logo_url = $8, pdf_footer_text = $9,
			vat_exemption_text = $10, late_payment_penalties = $11, default_currency = $12,
			default_tax_rate = $13, updated_at = $14
		WHERE user_id = $1
	`, s.UserID, s.CompanyName, s.CompanyAddress, s.CompanyEmail, s.CompanyPhone,
		s.CompanyWebsite, s.CompanySiret, s.CompanyLogoURL, s.PDFFooterText,
		s.VATExemptionText, s.LatePaymentPenalties, s.DefaultCurrency,
		s.DefaultTaxRate, s.UpdatedAt)
	return err
}

func (r *repository) SetTaxStatus(ctx context.Context, s Settings) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET tax_status = $2 WHERE id = $1`, s.UserID, string(s.TaxStatus))
	return err
}
