package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pizzeria-storefront/internal/config"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errSecretRequired   = errors.New("stripe webhook secret is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// LineItem is one priced entry of a checkout session.
type LineItem struct {
	PriceRef string
	Quantity int64
}

// CheckoutRequest is what the storefront sends to the payment provider.
type CheckoutRequest struct {
	LineItems     []LineItem
	Mode          string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
}

// CheckoutSession is the hosted payment page created by the provider.
type CheckoutSession struct {
	ID  string
	URL string
}

// Client talks to Stripe Checkout and holds the webhook signing secret.
type Client struct {
	environment   string
	signingSecret string
	newSession    func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// NewClient validates the configured key against the environment and initializes the
// Stripe SDK.
func NewClient(cfg config.StripeConfig, logger *zerolog.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Env)
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.SecretKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	signingSecret := strings.TrimSpace(cfg.WebhookSecret)
	if signingSecret == "" {
		return nil, errSecretRequired
	}
	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	stripe.Key = apiKey

	if logger != nil {
		logger.Info().Str("env", env).Msg("stripe client initialized")
	}
	return &Client{
		environment:   env,
		signingSecret: signingSecret,
		newSession:    session.New,
	}, nil
}

func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

// CreateCheckoutSession creates a hosted checkout session. Errors are returned as the
// SDK produced them; see ProviderMessage.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if c == nil || c.newSession == nil {
		return nil, errors.New("stripe client not configured")
	}
	s, err := c.newSession(checkoutParams(ctx, req))
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func checkoutParams(ctx context.Context, req CheckoutRequest) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(req.Mode),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	for _, li := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(li.PriceRef),
			Quantity: stripe.Int64(li.Quantity),
		})
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

// ProviderMessage extracts the user-facing message from a Stripe error.
func ProviderMessage(err error) string {
	var se *stripe.Error
	if errors.As(err, &se) && strings.TrimSpace(se.Msg) != "" {
		return se.Msg
	}
	if err == nil {
		return ""
	}
	return "payment provider unavailable"
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}
