package customer

import (
	"context"

	"pizzeria-storefront/internal/domain"
)

// Repository persists and fetches customers.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	// UpdateProfile overwrites the name and phone of an existing customer.
	UpdateProfile(ctx context.Context, c domain.Customer) (*domain.Customer, error)
}
