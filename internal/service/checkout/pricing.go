package checkout

import "github.com/shopspring/decimal"

// Pricing holds the display-total constants. The provider computes the charged amount
// from its own price objects.
type Pricing struct {
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
}

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

// Tax is subtotal × rate rounded to cents.
func (p Pricing) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(p.TaxRate).Round(2)
}

// Totals computes subtotal + tax + delivery fee, rounded to cents.
func (p Pricing) Totals(subtotal decimal.Decimal) Totals {
	tax := p.Tax(subtotal)
	return Totals{
		Subtotal:    subtotal.Round(2),
		Tax:         tax,
		DeliveryFee: p.DeliveryFee.Round(2),
		Total:       subtotal.Add(tax).Add(p.DeliveryFee).Round(2),
	}
}
