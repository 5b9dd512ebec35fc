package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pizzeria-storefront/internal/apperr"
	"pizzeria-storefront/internal/domain"
	orderrepo "pizzeria-storefront/internal/repository/order"
	"pizzeria-storefront/internal/service/checkout"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
)

// ErrMissingUser rejects a completed session that cannot be tied to a customer. The
// webhook unmarks the event so the provider redelivers it.
var ErrMissingUser = apperr.New(apperr.CodeValidation, "checkout session has no userId metadata")

type orderStore interface {
	RecordCheckout(ctx context.Context, rec orderrepo.CheckoutRecord) (*domain.Order, bool, error)
	SetAddressSync(ctx context.Context, orderID, status, addressID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	PopularItems(ctx context.Context, limit int) ([]domain.PopularItem, error)
}

type addressSaver interface {
	SaveSelection(ctx context.Context, userID string, sel domain.AddressSelection) (*domain.Address, error)
}

type cartClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

type eventRecorder interface {
	WebhookEvent(eventType, outcome string)
}

// Params wires the order service. Carts is optional; without it paid carts are left
// to expire.
type Params struct {
	Orders    orderStore
	Addresses addressSaver
	Carts     cartClearer
	Pricing   checkout.Pricing
	Metrics   eventRecorder
	Logger    *zerolog.Logger
}

// Service turns completed payments into orders and serves order history.
type Service struct {
	orders    orderStore
	addresses addressSaver
	carts     cartClearer
	pricing   checkout.Pricing
	metrics   eventRecorder
	logger    *zerolog.Logger
}

func New(p Params) (*Service, error) {
	if p.Orders == nil {
		return nil, errors.New("order repository is required")
	}
	if p.Addresses == nil {
		return nil, errors.New("address saver is required")
	}
	logger := p.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		orders:    p.Orders,
		addresses: p.Addresses,
		carts:     p.Carts,
		pricing:   p.Pricing,
		metrics:   p.Metrics,
		logger:    logger,
	}, nil
}

// HandleEvent processes a verified provider event. Only paid one-off checkout
// sessions create orders; other events are acknowledged.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return errors.New("stripe event payload missing")
	}
	eventType := string(event.Type)

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			s.record(eventType, "failed")
			return apperr.Wrap(apperr.CodeValidation, err, "malformed checkout session payload")
		}
		outcome, err := s.reconcile(ctx, &sess)
		if err != nil {
			s.record(eventType, "failed")
			s.logger.Error().Err(err).Str("event_id", event.ID).Str("checkout_session", sess.ID).Msg("order service: reconcile")
			return err
		}
		s.record(eventType, outcome)
		return nil
	default:
		s.logger.Debug().Str("event_id", event.ID).Str("type", eventType).Msg("order service: event ignored")
		s.record(eventType, "ignored")
		return nil
	}
}

func (s *Service) reconcile(ctx context.Context, sess *stripe.CheckoutSession) (string, error) {
	if sess.Mode != stripe.CheckoutSessionModePayment || sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return "ignored", nil
	}

	meta, err := checkout.DecodeMetadata(sess.Metadata)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeValidation, err, "malformed cart_items metadata")
	}
	if meta.UserID == "" {
		return "", ErrMissingUser
	}

	rec := s.buildRecord(sess, meta)
	o, created, err := s.orders.RecordCheckout(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("record checkout %s: %w", sess.ID, err)
	}
	if !created {
		return "replayed", nil
	}
	s.logger.Info().Str("order_id", o.ID).Str("user_id", o.UserID).Str("checkout_session", sess.ID).Msg("order created")

	if a := meta.Address; a != nil && a.SaveToProfile && !a.IsSaved() {
		s.syncAddress(ctx, o, *a)
	}
	s.clearCart(ctx, o, meta.CartSession)
	return "processed", nil
}

// clearCart drops the session cart the order was paid from. The order stands even if
// the cart outlives it.
func (s *Service) clearCart(ctx context.Context, o *domain.Order, sessionID string) {
	if s.carts == nil || sessionID == "" {
		return
	}
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logger.Warn().Err(err).Str("order_id", o.ID).Str("cart_session", sessionID).Msg("order service: clear paid cart")
	}
}

// syncAddress saves the ad-hoc address after the order is committed. A failure is
// recorded on the order and never undoes it.
func (s *Service) syncAddress(ctx context.Context, o *domain.Order, sel domain.AddressSelection) {
	status, addressID := domain.AddressSyncSaved, ""
	saved, err := s.addresses.SaveSelection(ctx, o.UserID, sel)
	if err != nil {
		status = domain.AddressSyncFailed
		s.logger.Warn().Err(err).Str("order_id", o.ID).Msg("order service: save address to profile")
	} else {
		addressID = saved.ID
	}
	if err := s.orders.SetAddressSync(ctx, o.ID, status, addressID); err != nil {
		s.logger.Error().Err(err).Str("order_id", o.ID).Str("status", status).Msg("order service: set address sync")
		return
	}
	o.AddressSyncStatus = status
	if addressID != "" {
		o.AddressID = addressID
	}
}

func (s *Service) buildRecord(sess *stripe.CheckoutSession, meta checkout.Metadata) orderrepo.CheckoutRecord {
	subtotal := decimal.New(sess.AmountSubtotal, -2)

	var paymentIntentID, customerRef string
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}
	if sess.Customer != nil {
		customerRef = sess.Customer.ID
	}

	o := domain.Order{
		UserID:          meta.UserID,
		Subtotal:        subtotal,
		Tax:             s.pricing.Tax(subtotal),
		DeliveryFee:     s.pricing.DeliveryFee,
		Total:           decimal.New(sess.AmountTotal, -2),
		Status:          domain.OrderStatusConfirmed,
		PaymentStatus:   domain.PaymentStatusPaid,
		PaymentIntentID: paymentIntentID,
	}
	if d := sess.CustomerDetails; d != nil {
		o.CustomerName = d.Name
		o.CustomerEmail = d.Email
		o.CustomerPhone = d.Phone
	}
	if a := meta.Address; a != nil {
		o.Street = a.Street
		o.City = a.City
		o.State = a.State
		o.ZipCode = a.ZipCode
		o.AddressID = a.AddressID
	}
	for _, item := range meta.CartItems {
		o.Items = append(o.Items, domain.OrderItem{
			ItemID:              item.ID,
			Name:                item.Name,
			Price:               item.Price,
			Quantity:            item.Quantity,
			SpecialInstructions: item.SpecialInstructions,
		})
	}

	return orderrepo.CheckoutRecord{
		Session: domain.PaymentSession{
			CheckoutSessionID: sess.ID,
			PaymentIntentID:   paymentIntentID,
			CustomerRef:       customerRef,
			AmountSubtotal:    sess.AmountSubtotal,
			AmountTotal:       sess.AmountTotal,
			Currency:          string(sess.Currency),
			PaymentStatus:     string(sess.PaymentStatus),
		},
		Order: o,
	}
}

// ListByUser returns the customer's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// Popular ranks item names by total quantity ordered.
func (s *Service) Popular(ctx context.Context, limit int) ([]domain.PopularItem, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.orders.PopularItems(ctx, limit)
}

func (s *Service) record(eventType, outcome string) {
	if s.metrics != nil {
		s.metrics.WebhookEvent(eventType, outcome)
	}
}
