package favorite

import (
	"context"

	"pizzeria-storefront/internal/domain"
)

// Repository stores customer favorites, at most one per item.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error)
	// Add inserts the favorite or refreshes the copied name and price of an existing one.
	Add(ctx context.Context, f domain.Favorite) (*domain.Favorite, error)
	Delete(ctx context.Context, userID, id string) error
}
