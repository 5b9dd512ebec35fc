package domain

import (
	"strings"
	"time"
)

// Address is a delivery address saved on a customer's profile.
type Address struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Label     string    `json:"label,omitempty"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zipCode"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// AddressSelection is the address chosen for one checkout: either a reference to a
// saved address or an ad-hoc entry.
type AddressSelection struct {
	AddressID     string `json:"addressId,omitempty"`
	Street        string `json:"street"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zipCode"`
	SaveToProfile bool   `json:"saveToProfile,omitempty"`
}

func (s AddressSelection) IsSaved() bool { return s.AddressID != "" }

// Complete reports whether all four address fields are non-blank.
func (s AddressSelection) Complete() bool {
	for _, v := range []string{s.Street, s.City, s.State, s.ZipCode} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

func SelectionFromAddress(a Address) AddressSelection {
	return AddressSelection{
		AddressID: a.ID,
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		ZipCode:   a.ZipCode,
	}
}
