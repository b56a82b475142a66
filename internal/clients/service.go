package clients

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/devisflow/devisflow/internal/platform/httpx"
)

var (
	// ErrNotFound also covers clients owned by another user.
	ErrNotFound = fmt.Errorf("client not found: %w", httpx.ErrNotFound)
	// ErrInUse rejects deleting a client still referenced by quotes.
	ErrInUse = &httpx.ValidationError{Message: "client is referenced by quotes and cannot be deleted"}
)

// CacheInvalidator drops cached per-user read models after a mutation.
type CacheInvalidator interface {
	Bump(ctx context.Context, userID string) error
}

// Service implements owner-scoped client management.
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

func (s *Service) Create(ctx context.Context, userID string, req CreateClientRequest) (*Client, error) {
	now := s.now()
	client := Client{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       req.Name,
		Email:      req.Email,
		Company:    req.Company,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		VATNumber:  req.VATNumber,
		Notes:      req.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	s.invalidate(ctx, userID)
	return &client, nil
}

// Get returns the client if userID owns it.
func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*Client, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Client, int, error) {
	return s.repo.List(ctx, userID, limit, offset)
}

func (s *Service) Update(ctx context.Context, userID string, id uuid.UUID, req UpdateClientRequest) (*Client, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.PostalCode != nil {
		updates["postal_code"] = *req.PostalCode
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.VATNumber != nil {
		updates["vat_number"] = *req.VATNumber
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	var updated *Client
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, userID, id, updates); err != nil {
			return err
		}
		var err error
		updated, err = repo.Get(ctx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return updated, nil
}

// Delete removes a client that no quote references.
func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if _, err := repo.Get(ctx, userID, id); err != nil {
			return err
		}
		n, err := repo.CountQuotes(ctx, id)
		if err != nil {
			return fmt.Errorf("count client quotes: %w", err)
		}
		if n > 0 {
			return ErrInUse
		}
		return repo.Delete(ctx, userID, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx, userID); err != nil {
		s.logger.Warn("dashboard cache bump", slog.String("user_id", userID), slog.Any("error", err))
	}
}
