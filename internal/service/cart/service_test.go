package cart

import (
	"context"
	"errors"
	"testing"

	"pizzeria-storefront/internal/apperr"
	"pizzeria-storefront/internal/domain"
	cartrepo "pizzeria-storefront/internal/repository/cart"

	"github.com/shopspring/decimal"
)

type stubRepo struct {
	carts     map[string]*domain.Cart
	updateErr error
	deleted   []string
}

func newStubRepo() *stubRepo {
	return &stubRepo{carts: map[string]*domain.Cart{}}
}

func (s *stubRepo) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	if c, ok := s.carts[sessionID]; ok {
		clone := *c
		clone.Lines = append([]domain.CartLine(nil), c.Lines...)
		return &clone, nil
	}
	return &domain.Cart{SessionID: sessionID}, nil
}

func (s *stubRepo) Update(ctx context.Context, sessionID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	c, _ := s.Get(ctx, sessionID)
	if err := fn(c); err != nil {
		return nil, err
	}
	s.carts[sessionID] = c
	return c, nil
}

func (s *stubRepo) Delete(_ context.Context, sessionID string) error {
	delete(s.carts, sessionID)
	s.deleted = append(s.deleted, sessionID)
	return nil
}

type stubCatalog struct {
	catalog *domain.Catalog
	err     error
}

func (s stubCatalog) Catalog(context.Context) (*domain.Catalog, error) {
	return s.catalog, s.err
}

type recorder struct {
	actions []string
}

func (r *recorder) CartMutation(action string) {
	r.actions = append(r.actions, action)
}

func testCatalog() stubCatalog {
	return stubCatalog{catalog: domain.NewCatalog([]domain.Product{
		{ID: "margherita", Name: "Margherita", Price: decimal.RequireFromString("10.99"), PriceRef: "price_m"},
		{ID: "diavola", Name: "Diavola", Price: decimal.RequireFromString("13.99"), PriceRef: "price_d"},
	})}
}

func TestAddItemUsesCatalogPrice(t *testing.T) {
	repo := newStubRepo()
	rec := &recorder{}
	svc := New(repo, testCatalog(), rec)
	ctx := context.Background()

	for _, id := range []string{"margherita", "margherita", "diavola"} {
		if _, err := svc.AddItem(ctx, "s1", id); err != nil {
			t.Fatalf("AddItem %s: %v", id, err)
		}
	}
	cart, err := svc.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := cart.Total(); !got.Equal(decimal.RequireFromString("35.97")) {
		t.Fatalf("expected total 35.97, got %s", got)
	}
	if cart.ItemCount() != 3 {
		t.Fatalf("expected 3 items, got %d", cart.ItemCount())
	}
	if len(rec.actions) != 3 || rec.actions[0] != "add" {
		t.Fatalf("unexpected metrics %v", rec.actions)
	}
}

func TestAddUnknownItemIsNotFound(t *testing.T) {
	svc := New(newStubRepo(), testCatalog(), nil)
	_, err := svc.AddItem(context.Background(), "s1", "calzone")
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestUpdateQuantityMissingLine(t *testing.T) {
	svc := New(newStubRepo(), testCatalog(), nil)
	ctx := context.Background()

	if _, err := svc.UpdateQuantity(ctx, "s1", "margherita", 2); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
	cart, err := svc.UpdateQuantity(ctx, "s1", "margherita", 0)
	if err != nil {
		t.Fatalf("zero quantity on missing line should be a no-op, got %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("cart should stay empty")
	}
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	svc := New(newStubRepo(), testCatalog(), nil)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", "diavola"); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	cart, err := svc.UpdateQuantity(ctx, "s1", "diavola", 3)
	if err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if l, _ := cart.Line("diavola"); l.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", l.Quantity)
	}
	cart, err = svc.Remove(ctx, "s1", "diavola")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected empty cart")
	}
	if _, err := svc.Remove(ctx, "s1", "diavola"); err != nil {
		t.Fatalf("removing an absent line should be a no-op, got %v", err)
	}
}

func TestApplyIsAllOrNothing(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, testCatalog(), nil)
	ctx := context.Background()

	_, err := svc.Apply(ctx, "s1", UpdateInput{Actions: []UpdateAction{
		{Action: "addItem", ItemID: "margherita"},
		{Action: "addItem", ItemID: "calzone"},
	}})
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	cart, _ := svc.Get(ctx, "s1")
	if !cart.IsEmpty() {
		t.Fatalf("failed batch must not persist partial changes: %+v", cart.Lines)
	}
}

func TestApplyValidation(t *testing.T) {
	svc := New(newStubRepo(), testCatalog(), nil)
	ctx := context.Background()

	if _, err := svc.Apply(ctx, "s1", UpdateInput{}); apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Apply(ctx, "s1", UpdateInput{Actions: []UpdateAction{{Action: "explode"}}}); apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestContendedUpdateIsConflict(t *testing.T) {
	repo := newStubRepo()
	repo.updateErr = cartrepo.ErrConflict
	svc := New(repo, testCatalog(), nil)

	_, err := svc.AddItem(context.Background(), "s1", "margherita")
	if apperr.CodeOf(err) != apperr.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestClear(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, testCatalog(), nil)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", "margherita"); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := svc.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	cart, _ := svc.Get(ctx, "s1")
	if !cart.IsEmpty() || len(repo.deleted) != 1 {
		t.Fatalf("expected cleared cart")
	}
}
