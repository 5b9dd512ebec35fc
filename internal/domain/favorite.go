package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Favorite is a menu item a customer starred. Name and price are copied from the
// catalog when the favorite is added.
type Favorite struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	ItemID    string          `json:"itemId"`
	ItemName  string          `json:"itemName"`
	ItemPrice decimal.Decimal `json:"itemPrice"`
	CreatedAt time.Time       `json:"createdAt"`
}
