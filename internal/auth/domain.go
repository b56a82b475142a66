// Package auth resolves the session token of a request into the current user.
// Sessions are issued by the external identity provider; this package only reads them.
package auth

import (
	"fmt"
	"time"

	"github.com/devisflow/devisflow/internal/platform/httpx"
)

// SessionCookie is the cookie set by the identity provider. Its value may be
// signed as "<token>.<signature>".
const SessionCookie = "better-auth.session_token"

var (
	// ErrUnauthenticated covers missing, unknown and expired sessions.
	ErrUnauthenticated = fmt.Errorf("authentication required: %w", httpx.ErrUnauthorized)
	// ErrUserNotFound is returned when a session points at a deleted user.
	ErrUserNotFound = fmt.Errorf("user not found: %w", httpx.ErrUnauthorized)
)

// Session is a row of the sessions table.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
