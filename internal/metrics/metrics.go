package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Storefront counts cart mutations, checkout attempts and webhook deliveries.
// A nil *Storefront, or one built without a registerer, records nothing.
type Storefront struct {
	cartMutations    *prometheus.CounterVec
	checkoutSessions *prometheus.CounterVec
	webhookEvents    *prometheus.CounterVec
}

// New registers the storefront counters on reg.
func New(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations applied, by action.",
	}, []string{"action"})
	checkoutSessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_total",
		Help: "Checkout session attempts, by outcome.",
	}, []string{"outcome"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Payment provider webhook events, by type and outcome.",
	}, []string{"type", "outcome"})
	reg.MustRegister(cartMutations, checkoutSessions, webhookEvents)
	return &Storefront{
		cartMutations:    cartMutations,
		checkoutSessions: checkoutSessions,
		webhookEvents:    webhookEvents,
	}
}

func (s *Storefront) CartMutation(action string) {
	if s == nil || s.cartMutations == nil {
		return
	}
	s.cartMutations.WithLabelValues(normalizeLabel(action)).Inc()
}

// CheckoutSession records one session attempt. Outcomes used: created, rejected,
// in_progress, provider_error.
func (s *Storefront) CheckoutSession(outcome string) {
	if s == nil || s.checkoutSessions == nil {
		return
	}
	s.checkoutSessions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (s *Storefront) WebhookEvent(eventType, outcome string) {
	if s == nil || s.webhookEvents == nil {
		return
	}
	s.webhookEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
