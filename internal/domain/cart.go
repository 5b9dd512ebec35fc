package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one distinct item in a cart. Quantity is always at least 1.
type CartLine struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Image       string          `json:"image,omitempty"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
}

// Cart is a session-scoped list of lines, unique by item id, in insertion order.
type Cart struct {
	SessionID string     `json:"sessionId"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// LineFromProduct snapshots the catalog fields a cart line carries.
func LineFromProduct(p Product) CartLine {
	return CartLine{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Quantity:    1,
		Image:       p.Image,
		Description: p.Description,
		Category:    p.CategoryID,
	}
}

// Add increments the quantity of an existing line or appends the item with quantity 1.
func (c *Cart) Add(item CartLine) {
	if i := c.index(item.ID); i >= 0 {
		c.Lines[i].Quantity++
		return
	}
	item.Quantity = 1
	c.Lines = append(c.Lines, item)
}

// UpdateQuantity sets the quantity of a line, removing it when n <= 0. It reports
// whether the line existed.
func (c *Cart) UpdateQuantity(id string, n int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	if n <= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return true
	}
	c.Lines[i].Quantity = n
	return true
}

func (c *Cart) Remove(id string) {
	if i := c.index(id); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

// Total is recomputed from the lines on every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Line(id string) (CartLine, bool) {
	if i := c.index(id); i >= 0 {
		return c.Lines[i], true
	}
	return CartLine{}, false
}

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

func (c *Cart) index(id string) int {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return i
		}
	}
	return -1
}
