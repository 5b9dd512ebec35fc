package checkout

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"pizzeria-storefront/internal/apperr"
	"pizzeria-storefront/internal/domain"
	"pizzeria-storefront/internal/idempotency"
	"pizzeria-storefront/internal/payments"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
)

type stubProvider struct {
	calls int
	last  payments.CheckoutRequest
	err   error
}

func (p *stubProvider) CreateCheckoutSession(_ context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	p.calls++
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	return &payments.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.test/cs_test_1"}, nil
}

type stubCatalog struct{ c *domain.Catalog }

func (s stubCatalog) Catalog(context.Context) (*domain.Catalog, error) { return s.c, nil }

type passthroughResolver struct{}

func (passthroughResolver) Resolve(_ context.Context, _ string, sel *domain.AddressSelection) (*domain.AddressSelection, error) {
	return sel, nil
}

type stubLock struct {
	held     bool
	released int
}

func (l *stubLock) Acquire(context.Context, string) (func(context.Context) error, error) {
	if l.held {
		return nil, idempotency.ErrLocked
	}
	return func(context.Context) error { l.released++; return nil }, nil
}

func testCatalog() *domain.Catalog {
	return domain.NewCatalog([]domain.Product{
		{ID: "margherita", Name: "Margherita", Price: decimal.RequireFromString("10.99"), PriceRef: "price_margherita"},
		{ID: "diavola", Name: "Diavola", Price: decimal.RequireFromString("13.99"), PriceRef: "price_diavola"},
		{ID: "pizza-club", Name: "Pizza Club", Price: decimal.RequireFromString("29.00"), PriceRef: "price_club", Mode: domain.ModeSubscription},
	})
}

func newTestService(t *testing.T, p *stubProvider, l *stubLock) *Service {
	t.Helper()
	svc, err := New(Params{
		Provider:      p,
		Catalog:       stubCatalog{c: testCatalog()},
		Addresses:     passthroughResolver{},
		Lock:          l,
		Pricing:       Pricing{TaxRate: decimal.RequireFromString("0.08"), DeliveryFee: decimal.RequireFromString("4.99")},
		StorefrontURL: "https://shop.test/",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

var customer = &domain.Customer{ID: "u1", Email: "a@example.com"}

func TestCreateSessionRequiresCustomer(t *testing.T) {
	p := &stubProvider{}
	svc := newTestService(t, p, &stubLock{})

	_, err := svc.CreateSession(context.Background(), nil, Request{LineItems: []payments.LineItem{{PriceRef: "price_margherita", Quantity: 1}}})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if p.calls != 0 {
		t.Fatalf("provider must not be called")
	}
}

func TestCreateSessionRejectsEmptyCart(t *testing.T) {
	p := &stubProvider{}
	svc := newTestService(t, p, &stubLock{})

	_, err := svc.CreateSession(context.Background(), customer, Request{})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if apperr.CodeOf(err) != apperr.CodeEmptyCart {
		t.Fatalf("empty cart must keep its own code, got %s", apperr.CodeOf(err))
	}
}

func TestCreateSessionUnknownPrice(t *testing.T) {
	p := &stubProvider{}
	svc := newTestService(t, p, &stubLock{})

	_, err := svc.CreateSession(context.Background(), customer, Request{LineItems: []payments.LineItem{{PriceRef: "price_ghost", Quantity: 1}}})
	var mismatch *CatalogMismatchError
	if !errors.As(err, &mismatch) || mismatch.PriceRef != "price_ghost" {
		t.Fatalf("expected mismatch naming the price, got %v", err)
	}
	if apperr.HTTPStatus(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", apperr.HTTPStatus(err))
	}
	if p.calls != 0 {
		t.Fatalf("provider must not be called")
	}
}

func TestCreateSessionSendsMetadata(t *testing.T) {
	p := &stubProvider{}
	l := &stubLock{}
	svc := newTestService(t, p, l)

	sess, err := svc.CreateSession(context.Background(), customer, Request{
		LineItems: []payments.LineItem{{PriceRef: "price_margherita", Quantity: 2}, {PriceRef: "price_diavola", Quantity: 1}},
		Address:   &domain.AddressSelection{Street: "1 Via Roma", City: "Rome", State: "RM", ZipCode: "00100", SaveToProfile: true},
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.URL == "" || sess.ID != "cs_test_1" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if !sess.Totals.Total.Equal(decimal.RequireFromString("43.84")) {
		t.Fatalf("unexpected totals %+v", sess.Totals)
	}
	if l.released != 1 {
		t.Fatalf("lock should be released once, got %d", l.released)
	}

	req := p.last
	if req.Mode != domain.ModePayment || req.CustomerEmail != "a@example.com" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.SuccessURL != "https://shop.test/checkout/success?session_id={CHECKOUT_SESSION_ID}" || req.CancelURL != "https://shop.test/cart" {
		t.Fatalf("unexpected urls %q %q", req.SuccessURL, req.CancelURL)
	}

	meta, err := DecodeMetadata(req.Metadata)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if meta.UserID != "u1" || len(meta.CartItems) != 2 || meta.CartItems[0].Name != "Margherita" || meta.CartItems[0].Quantity != 2 {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	if meta.Address == nil || meta.Address.ZipCode != "00100" || !meta.Address.SaveToProfile {
		t.Fatalf("unexpected address metadata %+v", meta.Address)
	}
}

func TestCreateSessionRejectsModeMismatch(t *testing.T) {
	p := &stubProvider{}
	l := &stubLock{}
	svc := newTestService(t, p, l)

	_, err := svc.CreateSession(context.Background(), customer, Request{
		LineItems: []payments.LineItem{{PriceRef: "price_margherita", Quantity: 1}},
		Mode:      domain.ModeSubscription,
	})
	if apperr.CodeOf(err) != apperr.CodeValidation || !strings.Contains(err.Error(), "Margherita") {
		t.Fatalf("expected validation error naming the product, got %v", err)
	}
	_, err = svc.CreateSession(context.Background(), customer, Request{
		LineItems: []payments.LineItem{{PriceRef: "price_club", Quantity: 1}},
	})
	if apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("subscription price in payment mode should be rejected, got %v", err)
	}
	if p.calls != 0 || l.released != 0 {
		t.Fatalf("rejected before the lock, calls=%d released=%d", p.calls, l.released)
	}

	if _, err := svc.CreateSession(context.Background(), customer, Request{
		LineItems: []payments.LineItem{{PriceRef: "price_club", Quantity: 1}},
		Mode:      domain.ModeSubscription,
	}); err != nil {
		t.Fatalf("matching mode: %v", err)
	}
	if p.last.Mode != domain.ModeSubscription {
		t.Fatalf("unexpected mode %q", p.last.Mode)
	}
}

func TestCreateSessionLocked(t *testing.T) {
	p := &stubProvider{}
	svc := newTestService(t, p, &stubLock{held: true})

	_, err := svc.CreateSession(context.Background(), customer, Request{LineItems: []payments.LineItem{{PriceRef: "price_margherita", Quantity: 1}}})
	if !errors.Is(err, ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}
	if p.calls != 0 {
		t.Fatalf("provider must not be called while locked")
	}
}

func TestCreateSessionProviderError(t *testing.T) {
	p := &stubProvider{err: &stripe.Error{Msg: "No such price: 'price_margherita'"}}
	l := &stubLock{}
	svc := newTestService(t, p, l)

	_, err := svc.CreateSession(context.Background(), customer, Request{LineItems: []payments.LineItem{{PriceRef: "price_margherita", Quantity: 1}}})
	if apperr.CodeOf(err) != apperr.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if apperr.PublicMessage(err) != "No such price: 'price_margherita'" {
		t.Fatalf("provider message should be surfaced, got %q", apperr.PublicMessage(err))
	}
	if p.calls != 1 || l.released != 1 {
		t.Fatalf("expected a single attempt and a released lock, calls=%d released=%d", p.calls, l.released)
	}
}

func TestCreateSessionRejectsLongMetadata(t *testing.T) {
	p := &stubProvider{}
	svc := newTestService(t, p, &stubLock{})

	_, err := svc.CreateSession(context.Background(), customer, Request{
		LineItems: []payments.LineItem{{PriceRef: "price_margherita", Quantity: 1}},
		Address:   &domain.AddressSelection{Street: strings.Repeat("x", MaxMetadataValue+1), City: "Rome", State: "RM", ZipCode: "00100"},
	})
	if apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if p.calls != 0 {
		t.Fatalf("provider must not be called")
	}
}

func TestBuildLineItems(t *testing.T) {
	cart := &domain.Cart{Lines: []domain.CartLine{
		{ID: "margherita", Quantity: 3},
		{ID: "diavola", Quantity: 1},
	}}
	items, err := BuildLineItems(cart, testCatalog())
	if err != nil {
		t.Fatalf("BuildLineItems: %v", err)
	}
	if len(items) != 2 || items[0].PriceRef != "price_margherita" || items[0].Quantity != 3 {
		t.Fatalf("unexpected items %+v", items)
	}

	cart.Lines = append(cart.Lines, domain.CartLine{ID: "calzone", Quantity: 1})
	_, err = BuildLineItems(cart, testCatalog())
	var mismatch *CatalogMismatchError
	if !errors.As(err, &mismatch) || mismatch.ItemID != "calzone" {
		t.Fatalf("expected mismatch naming calzone, got %v", err)
	}
}

func TestCheckoutCartUsesCatalogPrices(t *testing.T) {
	p := &stubProvider{}
	svc := newTestService(t, p, &stubLock{})

	cart := &domain.Cart{SessionID: "sess-9", Lines: []domain.CartLine{{ID: "diavola", Price: decimal.RequireFromString("0.01"), Quantity: 2}}}
	sess, err := svc.CheckoutCart(context.Background(), customer, cart, nil)
	if err != nil {
		t.Fatalf("CheckoutCart: %v", err)
	}
	if !sess.Totals.Subtotal.Equal(decimal.RequireFromString("27.98")) {
		t.Fatalf("expected catalog subtotal, got %s", sess.Totals.Subtotal)
	}
	if _, ok := p.last.Metadata[MetaStreet]; ok {
		t.Fatalf("no address should be sent when none resolved")
	}
	if p.last.Metadata[MetaCartSession] != "sess-9" {
		t.Fatalf("expected cart session in metadata, got %q", p.last.Metadata[MetaCartSession])
	}

	if _, err := svc.CheckoutCart(context.Background(), customer, &domain.Cart{}, nil); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestPricingTotals(t *testing.T) {
	p := Pricing{TaxRate: decimal.RequireFromString("0.08"), DeliveryFee: decimal.RequireFromString("4.99")}
	got := p.Totals(decimal.RequireFromString("35.97"))
	if !got.Tax.Equal(decimal.RequireFromString("2.88")) || !got.Total.Equal(decimal.RequireFromString("43.84")) {
		t.Fatalf("unexpected totals %+v", got)
	}
}
