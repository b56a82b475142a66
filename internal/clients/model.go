// Package clients manages the customers a user sends quotes to.
package clients

import (
	"time"

	"github.com/google/uuid"
)

// Client is owned by exactly one user.
type Client struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Company    *string   `json:"company"`
	Phone      *string   `json:"phone"`
	Address    *string   `json:"address"`
	City       *string   `json:"city"`
	PostalCode *string   `json:"postal_code"`
	Country    *string   `json:"country"`
	VATNumber  *string   `json:"vat_number"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
