package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func line(id, price string) CartLine {
	return CartLine{ID: id, Name: id, Price: decimal.RequireFromString(price)}
}

func TestCartAddMergesById(t *testing.T) {
	var c Cart
	c.Add(line("margherita", "10.99"))
	c.Add(line("diavola", "13.99"))
	c.Add(line("margherita", "10.99"))

	if len(c.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(c.Lines))
	}
	if c.Lines[0].ID != "margherita" || c.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected first line %+v", c.Lines[0])
	}
	if c.Lines[1].ID != "diavola" || c.Lines[1].Quantity != 1 {
		t.Fatalf("unexpected second line %+v", c.Lines[1])
	}
}

func TestCartAddIgnoresIncomingQuantity(t *testing.T) {
	var c Cart
	item := line("pepperoni", "12.99")
	item.Quantity = 7
	c.Add(item)
	if c.Lines[0].Quantity != 1 {
		t.Fatalf("new line should start at 1, got %d", c.Lines[0].Quantity)
	}
}

func TestCartTotalAndItemCount(t *testing.T) {
	var c Cart
	c.Add(line("margherita", "10.99"))
	c.Add(line("margherita", "10.99"))
	c.Add(line("diavola", "13.99"))

	if got := c.Total(); !got.Equal(decimal.RequireFromString("35.97")) {
		t.Fatalf("expected 35.97, got %s", got)
	}
	if got := c.ItemCount(); got != 3 {
		t.Fatalf("expected 3 items, got %d", got)
	}
}

func TestCartUpdateQuantity(t *testing.T) {
	var c Cart
	c.Add(line("margherita", "10.99"))
	c.Add(line("diavola", "13.99"))

	if !c.UpdateQuantity("margherita", 4) {
		t.Fatalf("expected existing line")
	}
	if l, _ := c.Line("margherita"); l.Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", l.Quantity)
	}
	if !c.UpdateQuantity("margherita", 0) {
		t.Fatalf("expected existing line")
	}
	if _, ok := c.Line("margherita"); ok {
		t.Fatalf("line should be removed at quantity 0")
	}
	if !c.UpdateQuantity("diavola", -3) || !c.IsEmpty() {
		t.Fatalf("negative quantity should remove the line, got %+v", c.Lines)
	}
	if c.UpdateQuantity("capricciosa", 2) {
		t.Fatalf("unknown line should report false")
	}
	if !c.IsEmpty() {
		t.Fatalf("unknown line must not be created")
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	var c Cart
	c.Add(line("margherita", "10.99"))
	c.Add(line("diavola", "13.99"))

	c.Remove("unknown")
	if len(c.Lines) != 2 {
		t.Fatalf("removing an absent id should be a no-op")
	}
	c.Remove("margherita")
	if len(c.Lines) != 1 || c.Lines[0].ID != "diavola" {
		t.Fatalf("unexpected lines %+v", c.Lines)
	}
	c.Clear()
	if !c.IsEmpty() || !c.Total().IsZero() || c.ItemCount() != 0 {
		t.Fatalf("cart should be empty after clear")
	}
}

func TestCartQuantitiesStayPositive(t *testing.T) {
	var c Cart
	ops := []func(){
		func() { c.Add(line("a", "1.00")) },
		func() { c.UpdateQuantity("a", -1) },
		func() { c.Add(line("b", "2.00")) },
		func() { c.UpdateQuantity("b", 3) },
		func() { c.Add(line("a", "1.00")) },
		func() { c.UpdateQuantity("b", 0) },
		func() { c.Remove("a") },
	}
	for i, op := range ops {
		op()
		seen := map[string]bool{}
		for _, l := range c.Lines {
			if l.Quantity < 1 {
				t.Fatalf("step %d: line %s has quantity %d", i, l.ID, l.Quantity)
			}
			if seen[l.ID] {
				t.Fatalf("step %d: duplicate line %s", i, l.ID)
			}
			seen[l.ID] = true
		}
	}
}

func TestLineFromProduct(t *testing.T) {
	p := Product{ID: "diavola", Name: "Diavola", Price: decimal.RequireFromString("13.99"), CategoryID: "pizzas", Image: "img"}
	l := LineFromProduct(p)
	if l.ID != "diavola" || l.Quantity != 1 || l.Category != "pizzas" || !l.Price.Equal(p.Price) {
		t.Fatalf("unexpected line %+v", l)
	}
}
