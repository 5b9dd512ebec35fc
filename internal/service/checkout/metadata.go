package checkout

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"pizzeria-storefront/internal/apperr"
	"pizzeria-storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// Provider metadata keys read back by order reconciliation.
const (
	MetaUserID      = "userId"
	MetaCartItems   = "cart_items"
	MetaStreet      = "street"
	MetaCity        = "city"
	MetaState       = "state"
	MetaZipCode     = "zipCode"
	MetaAddressID   = "addressId"
	MetaSaveAddress = "save_address"
	MetaCartSession = "cart_session"
)

// MaxMetadataValue is the provider's limit on a single metadata value.
const MaxMetadataValue = 500

type CartItem struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Price               decimal.Decimal `json:"price"`
	Quantity            int             `json:"quantity"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
}

// Metadata travels with the checkout session and comes back on the completion event.
// CartSession names the server-side cart to clear once the payment is confirmed.
type Metadata struct {
	UserID      string
	CartItems   []CartItem
	Address     *domain.AddressSelection
	CartSession string
}

// Encode flattens m into provider metadata. Values over MaxMetadataValue are a user
// input error.
func (m Metadata) Encode() (map[string]string, error) {
	out := map[string]string{MetaUserID: m.UserID}
	if m.CartSession != "" {
		out[MetaCartSession] = m.CartSession
	}

	items := m.CartItems
	if items == nil {
		items = []CartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode cart items: %w", err)
	}
	out[MetaCartItems] = string(raw)

	if a := m.Address; a != nil {
		out[MetaStreet] = a.Street
		out[MetaCity] = a.City
		out[MetaState] = a.State
		out[MetaZipCode] = a.ZipCode
		if a.IsSaved() {
			out[MetaAddressID] = a.AddressID
		}
		out[MetaSaveAddress] = strconv.FormatBool(a.SaveToProfile && !a.IsSaved())
	}

	for k, v := range out {
		if len(v) > MaxMetadataValue {
			return nil, apperr.New(apperr.CodeValidation, fmt.Sprintf("%s is too long for checkout (max %d characters)", k, MaxMetadataValue))
		}
	}
	return out, nil
}

// DecodeMetadata is the inverse of Encode. Malformed cart items are an error; a
// missing user is left for the caller to reject.
func DecodeMetadata(meta map[string]string) (Metadata, error) {
	m := Metadata{
		UserID:      strings.TrimSpace(meta[MetaUserID]),
		CartSession: strings.TrimSpace(meta[MetaCartSession]),
	}

	if raw := strings.TrimSpace(meta[MetaCartItems]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &m.CartItems); err != nil {
			return Metadata{}, fmt.Errorf("decode cart items: %w", err)
		}
	}

	a := domain.AddressSelection{
		AddressID:     strings.TrimSpace(meta[MetaAddressID]),
		Street:        meta[MetaStreet],
		City:          meta[MetaCity],
		State:         meta[MetaState],
		ZipCode:       meta[MetaZipCode],
		SaveToProfile: meta[MetaSaveAddress] == "true",
	}
	if a.AddressID != "" || a.Street != "" || a.City != "" || a.State != "" || a.ZipCode != "" {
		m.Address = &a
	}
	return m, nil
}
