package order

import (
	"context"

	"pizzeria-storefront/internal/domain"
)

// CheckoutRecord is everything written when a paid checkout session is reconciled.
type CheckoutRecord struct {
	Session domain.PaymentSession
	Order   domain.Order
}

type Repository interface {
	// RecordCheckout stores the payment session, the order and its items in one
	// transaction. A session that already has an order returns that order and false.
	RecordCheckout(ctx context.Context, rec CheckoutRecord) (*domain.Order, bool, error)
	SetAddressSync(ctx context.Context, orderID, status, addressID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	PopularItems(ctx context.Context, limit int) ([]domain.PopularItem, error)
}
