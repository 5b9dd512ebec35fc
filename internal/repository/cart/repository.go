package cart

import (
	"context"
	"errors"

	"pizzeria-storefront/internal/domain"
)

// ErrConflict is returned when a cart kept changing underneath an update.
var ErrConflict = errors.New("cart: concurrent modification")

// Repository stores session carts. A missing cart reads as empty.
type Repository interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	// Update loads the cart, applies fn and writes the result atomically. An error from
	// fn aborts the write and is returned as is.
	Update(ctx context.Context, sessionID string, fn func(*domain.Cart) error) (*domain.Cart, error)
	Delete(ctx context.Context, sessionID string) error
}
