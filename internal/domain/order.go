package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusConfirmed = "confirmed"
	PaymentStatusPaid    = "paid"
)

// Address sync states recorded on an order whose ad-hoc address was meant to be saved.
const (
	AddressSyncNotRequested = "not_requested"
	AddressSyncSaved        = "saved"
	AddressSyncFailed       = "failed"
)

type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	CustomerName      string          `json:"customerName,omitempty"`
	CustomerEmail     string          `json:"customerEmail,omitempty"`
	CustomerPhone     string          `json:"customerPhone,omitempty"`
	Street            string          `json:"street"`
	City              string          `json:"city"`
	State             string          `json:"state"`
	ZipCode           string          `json:"zipCode"`
	AddressID         string          `json:"addressId,omitempty"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	DeliveryFee       decimal.Decimal `json:"deliveryFee"`
	Total             decimal.Decimal `json:"total"`
	Status            string          `json:"status"`
	PaymentStatus     string          `json:"paymentStatus"`
	PaymentIntentID   string          `json:"paymentIntentId,omitempty"`
	AddressSyncStatus string          `json:"addressSyncStatus"`
	CreatedAt         time.Time       `json:"createdAt"`
	Items             []OrderItem     `json:"items"`
}

type OrderItem struct {
	ID                  string          `json:"id"`
	OrderID             string          `json:"orderId"`
	ItemID              string          `json:"itemId"`
	Name                string          `json:"name"`
	Price               decimal.Decimal `json:"price"`
	Quantity            int             `json:"quantity"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
}

// PaymentSession records a completed provider checkout session. OrderID is set once
// the order has been written.
type PaymentSession struct {
	ID                string    `json:"id"`
	CheckoutSessionID string    `json:"checkoutSessionId"`
	PaymentIntentID   string    `json:"paymentIntentId,omitempty"`
	CustomerRef       string    `json:"customerRef,omitempty"`
	AmountSubtotal    int64     `json:"amountSubtotal"`
	AmountTotal       int64     `json:"amountTotal"`
	Currency          string    `json:"currency"`
	PaymentStatus     string    `json:"paymentStatus"`
	OrderID           string    `json:"orderId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// PopularItem is an item name ranked by how often it was ordered.
type PopularItem struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}
