package checkout

import (
	"fmt"

	"pizzeria-storefront/internal/apperr"
	"pizzeria-storefront/internal/domain"
	"pizzeria-storefront/internal/payments"
)

// CatalogMismatchError names the cart line or price that has no catalog entry.
type CatalogMismatchError struct {
	ItemID   string
	PriceRef string
}

func (e *CatalogMismatchError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("item %q is not available for checkout", e.ItemID)
	}
	return fmt.Sprintf("price %q is not in the catalog", e.PriceRef)
}

// Unwrap exposes the coded form so the HTTP layer maps it to 422.
func (e *CatalogMismatchError) Unwrap() error {
	return apperr.New(apperr.CodeCatalogMismatch, e.Error())
}

// BuildLineItems maps each cart line to its catalog price. A single miss aborts the
// whole build.
func BuildLineItems(cart *domain.Cart, catalog *domain.Catalog) ([]payments.LineItem, error) {
	if cart == nil {
		return nil, nil
	}
	items := make([]payments.LineItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		p, ok := catalog.ByID(line.ID)
		if !ok || p.PriceRef == "" {
			return nil, &CatalogMismatchError{ItemID: line.ID}
		}
		items = append(items, payments.LineItem{PriceRef: p.PriceRef, Quantity: int64(line.Quantity)})
	}
	return items, nil
}
