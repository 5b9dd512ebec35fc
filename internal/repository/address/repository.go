package address

import (
	"context"

	"pizzeria-storefront/internal/domain"
)

// Repository stores profile addresses. Writes that set IsDefault clear the flag on the
// user's other addresses in the same transaction.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	Get(ctx context.Context, userID, id string) (*domain.Address, error)
	Create(ctx context.Context, a domain.Address) (*domain.Address, error)
	Update(ctx context.Context, a domain.Address) (*domain.Address, error)
	Delete(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) error
}
