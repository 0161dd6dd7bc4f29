package clients

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer of the small business being managed.
type Client struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContactName *string   `json:"contact_name,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName prefers the contact person over the company name when
// addressing the client in notifications.
func (c Client) DisplayName() string {
	if c.ContactName != nil && *c.ContactName != "" {
		return *c.ContactName
	}
	return c.Name
}

// CreateClientRequest carries the payload for creating a client.
type CreateClientRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	ContactName *string `json:"contact_name,omitempty" validate:"omitempty,max=200"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=50"`
}

// UpdateClientRequest carries a partial update; nil fields are left untouched.
type UpdateClientRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	ContactName *string `json:"contact_name,omitempty" validate:"omitempty,max=200"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=50"`
}

// ListClientsRequest filters the client listing.
type ListClientsRequest struct {
	Search string
	Limit  int
	Offset int
}
