package shared

import (
	"context"

	"github.com/devisflow/devisflow/internal/fiscal"
)

// User is the authenticated caller resolved by the auth middleware.
type User struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	Name         string           `json:"name"`
	BusinessName *string          `json:"business_name,omitempty"`
	Siret        *string          `json:"siret,omitempty"`
	Address      *string          `json:"address,omitempty"`
	LogoURL      *string          `json:"logo_url,omitempty"`
	TaxStatus    fiscal.TaxStatus `json:"tax_status"`
}

type userContextKey struct{}

// ContextWithUser stores the current user in context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the current user from context.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey{}).(*User)
	return user
}
