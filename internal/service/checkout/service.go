package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pizzeria-storefront/internal/apperr"
	"pizzeria-storefront/internal/domain"
	"pizzeria-storefront/internal/idempotency"
	"pizzeria-storefront/internal/payments"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrUnauthenticated    = apperr.New(apperr.CodeUnauthenticated, "sign in to check out")
	ErrEmptyCart          = apperr.New(apperr.CodeEmptyCart, "cart is empty")
	ErrCheckoutInProgress = apperr.New(apperr.CodeConflict, "checkout already in progress")
)

type provider interface {
	CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error)
}

type catalogSource interface {
	Catalog(ctx context.Context) (*domain.Catalog, error)
}

type addressResolver interface {
	Resolve(ctx context.Context, userID string, requested *domain.AddressSelection) (*domain.AddressSelection, error)
}

type locker interface {
	Acquire(ctx context.Context, key string) (func(context.Context) error, error)
}

type outcomeRecorder interface {
	CheckoutSession(outcome string)
}

// Params wires the checkout service.
type Params struct {
	Provider      provider
	Catalog       catalogSource
	Addresses     addressResolver
	Lock          locker
	Pricing       Pricing
	StorefrontURL string
	Metrics       outcomeRecorder
	Logger        *zerolog.Logger
}

// Service creates provider checkout sessions for signed-in customers.
type Service struct {
	provider      provider
	catalog       catalogSource
	addresses     addressResolver
	lock          locker
	pricing       Pricing
	storefrontURL string
	metrics       outcomeRecorder
	logger        *zerolog.Logger
}

func New(p Params) (*Service, error) {
	if p.Provider == nil {
		return nil, errors.New("checkout provider is required")
	}
	if p.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if p.Addresses == nil {
		return nil, errors.New("address resolver is required")
	}
	if p.Lock == nil {
		return nil, errors.New("checkout lock is required")
	}
	logger := p.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		provider:      p.Provider,
		catalog:       p.Catalog,
		addresses:     p.Addresses,
		lock:          p.Lock,
		pricing:       p.Pricing,
		storefrontURL: strings.TrimRight(p.StorefrontURL, "/"),
		metrics:       p.Metrics,
		logger:        logger,
	}, nil
}

// Request asks for a checkout session over catalog prices. CartSession is set when
// the lines come from a server-side cart.
type Request struct {
	LineItems   []payments.LineItem
	Mode        string
	SuccessURL  string
	CancelURL   string
	Address     *domain.AddressSelection
	CartSession string
}

// Session is returned to the client, which performs the redirect.
type Session struct {
	ID     string `json:"sessionId"`
	URL    string `json:"url"`
	Totals Totals `json:"totals"`
}

func (s *Service) Pricing() Pricing { return s.pricing }

// CreateSession validates the request against the catalog, resolves the delivery
// address and asks the provider for a session. One session per customer may be in
// flight at a time.
func (s *Service) CreateSession(ctx context.Context, customer *domain.Customer, req Request) (*Session, error) {
	if customer == nil || customer.ID == "" {
		return nil, ErrUnauthenticated
	}
	if len(req.LineItems) == 0 {
		return nil, ErrEmptyCart
	}

	mode := strings.TrimSpace(req.Mode)
	if mode == "" {
		mode = domain.ModePayment
	}
	if mode != domain.ModePayment && mode != domain.ModeSubscription {
		return nil, apperr.New(apperr.CodeValidation, "mode must be payment or subscription")
	}

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	items, subtotal, err := s.cartItems(catalog, mode, req.LineItems)
	if err != nil {
		s.record("rejected")
		return nil, err
	}

	address, err := s.addresses.Resolve(ctx, customer.ID, req.Address)
	if err != nil {
		s.record("rejected")
		return nil, err
	}

	metadata, err := Metadata{UserID: customer.ID, CartItems: items, Address: address, CartSession: req.CartSession}.Encode()
	if err != nil {
		s.record("rejected")
		return nil, err
	}

	release, err := s.lock.Acquire(ctx, customer.ID)
	if err != nil {
		if errors.Is(err, idempotency.ErrLocked) {
			s.record("in_progress")
			return nil, ErrCheckoutInProgress
		}
		return nil, apperr.Wrap(apperr.CodeDependency, err, "checkout lock unavailable")
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn().Err(err).Str("user_id", customer.ID).Msg("checkout service: release lock")
		}
	}()

	sess, err := s.provider.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		LineItems:     req.LineItems,
		Mode:          mode,
		SuccessURL:    s.urlOrDefault(req.SuccessURL, "/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     s.urlOrDefault(req.CancelURL, "/cart"),
		CustomerEmail: customer.Email,
		Metadata:      metadata,
	})
	if err != nil {
		s.record("provider_error")
		s.logger.Error().Err(err).Str("user_id", customer.ID).Msg("checkout service: create session")
		return nil, apperr.Wrap(apperr.CodeDependency, err, payments.ProviderMessage(err))
	}

	s.record("created")
	s.logger.Info().Str("user_id", customer.ID).Str("session_id", sess.ID).Msg("checkout session created")
	return &Session{ID: sess.ID, URL: sess.URL, Totals: s.pricing.Totals(subtotal)}, nil
}

// CheckoutCart creates a session from a server-side cart. The cart is left untouched;
// it is cleared when the payment is reconciled.
func (s *Service) CheckoutCart(ctx context.Context, customer *domain.Customer, cart *domain.Cart, address *domain.AddressSelection) (*Session, error) {
	if customer == nil || customer.ID == "" {
		return nil, ErrUnauthenticated
	}
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	items, err := BuildLineItems(cart, catalog)
	if err != nil {
		s.record("rejected")
		return nil, err
	}
	return s.CreateSession(ctx, customer, Request{
		LineItems:   items,
		Mode:        domain.ModePayment,
		Address:     address,
		CartSession: cart.SessionID,
	})
}

// cartItems resolves each price against the catalog and builds the reconciliation
// payload. Prices come from the catalog, never from the client, and every product
// must be sold in the requested mode.
func (s *Service) cartItems(catalog *domain.Catalog, mode string, lines []payments.LineItem) ([]CartItem, decimal.Decimal, error) {
	items := make([]CartItem, 0, len(lines))
	var subtotal decimal.Decimal
	for _, li := range lines {
		if li.Quantity <= 0 {
			return nil, subtotal, apperr.New(apperr.CodeValidation, fmt.Sprintf("quantity for %q must be positive", li.PriceRef))
		}
		p, ok := catalog.ByPriceRef(li.PriceRef)
		if !ok {
			return nil, subtotal, &CatalogMismatchError{PriceRef: li.PriceRef}
		}
		if productMode(p) != mode {
			return nil, subtotal, apperr.New(apperr.CodeValidation, fmt.Sprintf("%s cannot be bought in %s mode", p.Name, mode))
		}
		items = append(items, CartItem{ID: p.ID, Name: p.Name, Price: p.Price, Quantity: int(li.Quantity)})
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(li.Quantity)))
	}
	return items, subtotal, nil
}

func productMode(p domain.Product) string {
	if p.Mode == "" {
		return domain.ModePayment
	}
	return p.Mode
}

func (s *Service) urlOrDefault(u, path string) string {
	if u = strings.TrimSpace(u); u != "" {
		return u
	}
	return s.storefrontURL + path
}

func (s *Service) record(outcome string) {
	if s.metrics != nil {
		s.metrics.CheckoutSession(outcome)
	}
}
