package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/devisflow/devisflow/internal/fiscal"
	"github.com/devisflow/devisflow/internal/money"
	"github.com/devisflow/devisflow/internal/platform/httpx"
	"github.com/devisflow/devisflow/internal/shared"
)

// ErrNotFound signals a user without a settings row yet.
var ErrNotFound = fmt.Errorf("settings not found: %w", httpx.ErrNotFound)

// CacheInvalidator drops cached per-user read models.
type CacheInvalidator interface {
	Bump(ctx context.Context, userID string) error
}

// Service reads and updates user settings.
type Service struct {
	repo   Repository
	cache  CacheInvalidator
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the service. cache may be nil.
func NewService(repo Repository, cache CacheInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// Defaults returns the settings a user starts with.
func Defaults(user *shared.User, now time.Time) Settings {
	name := user.Name
	if user.BusinessName != nil && *user.BusinessName != "" {
		name = *user.BusinessName
	}
	if name == "" {
		name = DefaultCompanyName
	}
	s := Settings{
		UserID:               user.ID,
		CompanyName:          name,
		CompanyAddress:       user.Address,
		CompanySiret:         user.Siret,
		CompanyLogoURL:       user.LogoURL,
		VATExemptionText:     DefaultVATExemptionText,
		LatePaymentPenalties: DefaultLatePaymentPenalties,
		DefaultCurrency:      DefaultCurrency,
		DefaultTaxRate:       DefaultTaxRate,
		TaxStatus:            user.TaxStatus,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if user.Email != "" {
		email := user.Email
		s.CompanyEmail = &email
	}
	if s.TaxStatus == "" {
		s.TaxStatus = fiscal.TaxStatusFranchise
	}
	return s
}

// Get returns the user's settings, creating the defaults on first access.
func (s *Service) Get(ctx context.Context, user *shared.User) (*Settings, error) {
	current, err := s.repo.Get(ctx, user.ID)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	defaults := Defaults(user, s.now())
	if err := s.repo.Insert(ctx, defaults); err != nil {
		return nil, fmt.Errorf("create default settings: %w", err)
	}
	return s.repo.Get(ctx, user.ID)
}

// Update applies the provided fields. A new tax status only applies to quotes
// created afterwards.
func (s *Service) Update(ctx context.Context, user *shared.User, req UpdateSettingsRequest) (*Settings, error) {
	var status fiscal.TaxStatus
	if req.TaxStatus != nil {
		parsed, err := fiscal.ParseTaxStatus(*req.TaxStatus)
		if err != nil {
			return nil, httpx.NewValidationError("tax_status", err.Error())
		}
		status = parsed
	}
	if req.DefaultTaxRate != nil {
		if err := money.ValidateRate(*req.DefaultTaxRate); err != nil {
			return nil, httpx.NewValidationError("default_tax_rate", err.Error())
		}
	}

	var (
		updated       *Settings
		statusChanged bool
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		current, err := repo.Get(ctx, user.ID)
		if errors.Is(err, ErrNotFound) {
			d := Defaults(user, s.now())
			if err := repo.Insert(ctx, d); err != nil {
				return err
			}
			current = &d
		} else if err != nil {
			return err
		}

		next := *current
		applyUpdate(&next, req)
		next.UpdatedAt = s.now()
		if err := repo.Update(ctx, next); err != nil {
			return err
		}
		if status != "" && status != current.TaxStatus {
			next.TaxStatus = status
			if err := repo.SetTaxStatus(ctx, next); err != nil {
				return err
			}
			statusChanged = true
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	if statusChanged && s.cache != nil {
		// The threshold panel of the dashboard depends on the tax status.
		if err := s.cache.Bump(ctx, user.ID); err != nil {
			s.logger.Warn("invalidate dashboard cache", slog.String("user_id", user.ID), slog.Any("error", err))
		}
	}
	return updated, nil
}

func applyUpdate(s *Settings, req UpdateSettingsRequest) {
	if req.CompanyName != nil {
		s.CompanyName = *req.CompanyName
	}
	if req.CompanyAddress != nil {
		s.CompanyAddress = req.CompanyAddress
	}
	if req.CompanyEmail != nil {
		s.CompanyEmail = req.CompanyEmail
	}
	if req.CompanyPhone != nil {
		s.CompanyPhone = req.CompanyPhone
	}
	if req.CompanyWebsite != nil {
		s.CompanyWebsite = req.CompanyWebsite
	}
	if req.CompanySiret != nil {
		s.CompanySiret = req.CompanySiret
	}
	if req.CompanyLogoURL != nil {
		s.CompanyLogoURL = req.CompanyLogoURL
	}
	if req.PDFFooterText != nil {
		s.PDFFooterText = req.PDFFooterText
	}
	if req.VATExemptionText != nil {
		s.VATExemptionText = *req.VATExemptionText
	}
	if req.LatePaymentPenalties != nil {
		s.LatePaymentPenalties = *req.LatePaymentPenalties
	}
	if req.DefaultCurrency != nil {
		s.DefaultCurrency = *req.DefaultCurrency
	}
	if req.DefaultTaxRate != nil {
		s.DefaultTaxRate = money.Round(*req.DefaultTaxRate)
	}
}
