package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/devisflow/devisflow/internal/shared"
)

// Service resolves session tokens into users.
type Service struct {
	repo   Repository
	cache  *SessionCache
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a new Service. cache may be nil.
func NewService(repo Repository, cache *SessionCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// Resolve returns the user owning a live session token.
func (s *Service) Resolve(ctx context.Context, token string) (*shared.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	now := s.now()

	session, hit, err := s.cache.Get(ctx, token)
	if err != nil {
		s.logger.Warn("session cache read", slog.Any("error", err))
	}
	if !hit {
		session, err = s.repo.FindSession(ctx, token)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, session, now); err != nil {
			s.logger.Warn("session cache write", slog.Any("error", err))
		}
	}
	if session.Expired(now) {
		return nil, fmt.Errorf("session expired: %w", ErrUnauthenticated)
	}
	return s.repo.FindUser(ctx, session.UserID)
}

// User loads a user by id, for flows that know the owner but carry no session.
func (s *Service) User(ctx context.Context, id string) (*shared.User, error) {
	return s.repo.FindUser(ctx, id)
}
