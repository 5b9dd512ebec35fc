package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment modes understood by the checkout provider.
const (
	ModePayment      = "payment"
	ModeSubscription = "subscription"
)

// Product is a purchasable menu item. PriceRef is the payment provider's price id.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	PriceRef    string          `json:"priceRef"`
	ProductRef  string          `json:"productRef,omitempty"`
	Mode        string          `json:"mode"`
	Image       string          `json:"image,omitempty"`
	CategoryID  string          `json:"category"`
	Popular     bool            `json:"popular"`
	Vegetarian  bool            `json:"vegetarian"`
	Spicy       bool            `json:"spicy"`
	Allergens   []string        `json:"allergens,omitempty"`
	Position    int             `json:"-"`
	CreatedAt   time.Time       `json:"createdAt"`
}
