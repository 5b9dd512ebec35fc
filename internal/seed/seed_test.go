package seed

import (
	"context"
	"errors"
	"testing"

	"pizzeria-storefront/internal/domain"

	"github.com/shopspring/decimal"
)

type recordingWriter struct {
	products []domain.Product
	err      error
}

func (w *recordingWriter) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.products = append(w.products, p)
	return &p, nil
}

type categoryRecorder struct {
	items []domain.Category
}

func (c *categoryRecorder) Upsert(_ context.Context, cat domain.Category) (*domain.Category, error) {
	c.items = append(c.items, cat)
	return &cat, nil
}

func TestMenuIsSellable(t *testing.T) {
	menu := Menu()
	if len(menu) != 6 {
		t.Fatalf("expected 6 pizzas, got %d", len(menu))
	}
	catalog := domain.NewCatalog(menu)
	seen := map[string]bool{}
	for _, p := range menu {
		if p.PriceRef == "" || seen[p.PriceRef] {
			t.Fatalf("price ref missing or duplicated on %s", p.ID)
		}
		seen[p.PriceRef] = true
		if got, ok := catalog.ByPriceRef(p.PriceRef); !ok || got.ID != p.ID {
			t.Fatalf("price ref %s does not resolve to %s", p.PriceRef, p.ID)
		}
	}
	m, _ := catalog.ByID("margherita")
	if !m.Price.Equal(decimal.RequireFromString("10.99")) || !m.Popular {
		t.Fatalf("unexpected margherita %+v", m)
	}
}

func TestApplyUpsertsMenu(t *testing.T) {
	products := &recordingWriter{}
	categories := &categoryRecorder{}
	if err := Apply(context.Background(), products, categories); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(products.products) != 6 || len(categories.items) != 1 {
		t.Fatalf("unexpected writes: %d products, %d categories", len(products.products), len(categories.items))
	}
	if products.products[5].Position != 5 || products.products[5].CategoryID != "pizzas" {
		t.Fatalf("unexpected last product %+v", products.products[5])
	}
}

func TestApplyStopsOnError(t *testing.T) {
	products := &recordingWriter{err: errors.New("boom")}
	if err := Apply(context.Background(), products, &categoryRecorder{}); err == nil {
		t.Fatalf("expected error")
	}
}
