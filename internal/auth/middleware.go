package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/devisflow/devisflow/internal/platform/httpx"
	"github.com/devisflow/devisflow/internal/shared"
)

// Resolver turns a session token into the current user.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*shared.User, error)
}

// Middleware guards authenticated routes.
type Middleware struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewMiddleware constructs the middleware.
func NewMiddleware(resolver Resolver, logger *slog.Logger) *Middleware {
	return &Middleware{resolver: resolver, logger: logger}
}

// RequireUser rejects requests without a live session and stores the user in context.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.resolver.Resolve(r.Context(), TokenFromRequest(r))
		if err != nil {
			if !errors.Is(err, httpx.ErrUnauthorized) {
				m.logger.Error("resolve session", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithUser(r.Context(), user)))
	})
}

// TokenFromRequest reads the bearer token, falling back to the session cookie
// with its signature stripped.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token)
		}
	}
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	token, _, _ := strings.Cut(cookie.Value, ".")
	return token
}
