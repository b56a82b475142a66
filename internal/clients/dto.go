package clients

// CreateClientRequest is the payload of POST /clients.
type CreateClientRequest struct {
	Name       string  `json:"name" validate:"required,max=100"`
	Email      string  `json:"email" validate:"required,max=255,email"`
	Company    *string `json:"company" validate:"omitempty,max=200"`
	Phone      *string `json:"phone" validate:"omitempty,max=50"`
	Address    *string `json:"address"`
	City       *string `json:"city" validate:"omitempty,max=100"`
	PostalCode *string `json:"postal_code" validate:"omitempty,max=20"`
	Country    *string `json:"country" validate:"omitempty,max=100"`
	VATNumber  *string `json:"vat_number" validate:"omitempty,max=50"`
	Notes      *string `json:"notes"`
}

// UpdateClientRequest is the payload of PUT /clients/{id}. Nil fields are left as is.
type UpdateClientRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email      *string `json:"email" validate:"omitempty,max=255,email"`
	Company    *string `json:"company" validate:"omitempty,max=200"`
	Phone      *string `json:"phone" validate:"omitempty,max=50"`
	Address    *string `json:"address"`
	City       *string `json:"city" validate:"omitempty,max=100"`
	PostalCode *string `json:"postal_code" validate:"omitempty,max=20"`
	Country    *string `json:"country" validate:"omitempty,max=100"`
	VATNumber  *string `json:"vat_number" validate:"omitempty,max=50"`
	Notes      *string `json:"notes"`
}

// ListResponse is the paginated client listing.
type ListResponse struct {
	Clients []Client `json:"clients"`
	Total   int      `json:"total"`
}
