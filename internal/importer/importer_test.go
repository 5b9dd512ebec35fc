package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pizzeria-storefront/internal/domain"

	"github.com/shopspring/decimal"
)

type stubProductRepo struct {
	items []domain.Product
	err   error
}

type stubCategoryRepo struct {
	items []domain.Category
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, p)
	return &p, nil
}

func (s *stubCategoryRepo) Upsert(_ context.Context, c domain.Category) (*domain.Category, error) {
	s.items = append(s.items, c)
	return &c, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `id,name,description,price,category,image,popular,vegetarian,spicy,allergens,price_ref,product_ref
margherita,Margherita,Tomato and mozzarella,10.99,pizzas,/img/margherita.jpg,yes,yes,no,gluten;dairy,price_m,prod_m
,,,,,,,,,,,
diavola,Diavola,Spicy salami,13.99,pizzas,,,no,true,,price_d,
tiramisu,Tiramisu,,6.50,desserts,,,,,,price_t,`

	repo := &stubProductRepo{}
	catRepo := &stubCategoryRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, catRepo, Options{})

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 products imported, got %d", count)
	}

	first := repo.items[0]
	if first.ID != "margherita" || !first.Price.Equal(decimal.RequireFromString("10.99")) || first.Currency != "eur" {
		t.Fatalf("unexpected product data: %+v", first)
	}
	if !first.Popular || !first.Vegetarian || first.Spicy || len(first.Allergens) != 2 || first.PriceRef != "price_m" {
		t.Fatalf("unexpected flags on first product: %+v", first)
	}
	if first.Mode != domain.ModePayment || first.Position != 0 {
		t.Fatalf("expected payment mode at position 0, got %+v", first)
	}
	if repo.items[1].Position != 1 || !repo.items[1].Spicy {
		t.Fatalf("unexpected second product %+v", repo.items[1])
	}

	if len(catRepo.items) != 2 {
		t.Fatalf("expected 2 category upserts, got %d", len(catRepo.items))
	}
	if catRepo.items[0].ID != "pizzas" || catRepo.items[0].Name != "Pizzas" || catRepo.items[1].SortOrder != 1 {
		t.Fatalf("unexpected categories %+v", catRepo.items)
	}
}

func TestCSVImporter_AttachesPriceRefByName(t *testing.T) {
	existing := domain.NewCatalog([]domain.Product{
		{ID: "margherita", Name: "Margherita", PriceRef: "price_existing", ProductRef: "prod_existing"},
	})
	csvData := `id,name,price
margherita, margherita ,11.49`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, nil, Options{Existing: existing, Currency: "USD"})

	if _, err := imp.Run(context.Background()); err != nil {
		t.Fatalf("import run: %v", err)
	}
	got := repo.items[0]
	if got.PriceRef != "price_existing" || got.ProductRef != "prod_existing" || got.Currency != "usd" {
		t.Fatalf("expected refs from existing menu, got %+v", got)
	}
}

func TestCSVImporter_RejectsRowsCheckoutCannotSell(t *testing.T) {
	cases := map[string]string{
		"missing price ref": "id,name,price\nmargherita,Margherita,10.99",
		"zero price":        "id,name,price,price_ref\nmargherita,Margherita,0,price_m",
		"bad price":         "id,name,price,price_ref\nmargherita,Margherita,ten,price_m",
		"bad mode":          "id,name,price,price_ref,mode\nmargherita,Margherita,10.99,price_m,rental",
		"bad flag":          "id,name,price,price_ref,spicy\nmargherita,Margherita,10.99,price_m,very",
	}
	for name, csvData := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &stubProductRepo{}
			imp := NewCSVImporter(strings.NewReader(csvData), repo, nil, Options{})
			if _, err := imp.Run(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
			if len(repo.items) != 0 {
				t.Fatalf("nothing should be saved, got %+v", repo.items)
			}
		})
	}
}

func TestCSVImporter_StopsOnWriteError(t *testing.T) {
	csvData := "id,name,price,price_ref\nmargherita,Margherita,10.99,price_m"
	repo := &stubProductRepo{err: errors.New("db down")}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, nil, Options{})

	count, err := imp.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected error with line number, got %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 imported, got %d", count)
	}
}

func TestCSVImporter_RunCategoriesFile(t *testing.T) {
	csvData := `id,name,description,sort_order
pizzas,Pizzas,Hand-stretched,0
gluten-free,,,
drinks,Drinks,,5
`
	catRepo := &stubCategoryRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), nil, catRepo, Options{})

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 categories imported, got %d", count)
	}
	if catRepo.items[0].Description != "Hand-stretched" {
		t.Fatalf("unexpected first category %+v", catRepo.items[0])
	}
	if catRepo.items[1].Name != "Gluten free" || catRepo.items[1].SortOrder != 1 {
		t.Fatalf("expected derived name and row order, got %+v", catRepo.items[1])
	}
	if catRepo.items[2].SortOrder != 5 {
		t.Fatalf("expected explicit sort order, got %+v", catRepo.items[2])
	}
}

func TestDetectKind(t *testing.T) {
	productCSV := `id,name,price,price_ref
margherita,Margherita,10.99,price_m`
	categoryCSV := `id,name,sort_order
pizzas,Pizzas,0`

	kind, err := DetectKind(strings.NewReader(productCSV))
	if err != nil {
		t.Fatalf("detect product kind: %v", err)
	}
	if kind != KindProducts {
		t.Fatalf("expected product kind, got %s", kind)
	}

	kind, err = DetectKind(strings.NewReader(categoryCSV))
	if err != nil {
		t.Fatalf("detect category kind: %v", err)
	}
	if kind != KindCategories {
		t.Fatalf("expected category kind, got %s", kind)
	}
}
