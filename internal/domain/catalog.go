package domain

import "strings"

// Catalog is a read-only index over the menu. Lookups used by checkout are strict and
// keyed by id or price reference.
type Catalog struct {
	items      []Product
	byID       map[string]int
	byPriceRef map[string]int
	byName     map[string]int
}

func NewCatalog(items []Product) *Catalog {
	c := &Catalog{
		items:      make([]Product, len(items)),
		byID:       make(map[string]int, len(items)),
		byPriceRef: make(map[string]int, len(items)),
		byName:     make(map[string]int, len(items)),
	}
	copy(c.items, items)
	for i, p := range c.items {
		c.byID[p.ID] = i
		if p.PriceRef != "" {
			c.byPriceRef[p.PriceRef] = i
		}
		c.byName[strings.ToLower(strings.TrimSpace(p.Name))] = i
	}
	return c
}

func (c *Catalog) ByID(id string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	return c.lookup(c.byID, id)
}

func (c *Catalog) ByPriceRef(ref string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	return c.lookup(c.byPriceRef, ref)
}

// ByName matches case-insensitively. Only the importer uses it, to attach price
// references to rows that carry a display name.
func (c *Catalog) ByName(name string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	return c.lookup(c.byName, strings.ToLower(strings.TrimSpace(name)))
}

// Items returns the catalog in load order.
func (c *Catalog) Items() []Product {
	out := make([]Product, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Len() int { return len(c.items) }

func (c *Catalog) lookup(index map[string]int, key string) (Product, bool) {
	i, ok := index[key]
	if !ok {
		return Product{}, false
	}
	return c.items[i], true
}
