package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if !cfg.Checkout.TaxRate.Equal(decimal.RequireFromString("0.08")) {
		t.Fatalf("unexpected tax rate %s", cfg.Checkout.TaxRate)
	}
	if !cfg.Checkout.DeliveryFee.Equal(decimal.RequireFromString("4.99")) {
		t.Fatalf("unexpected delivery fee %s", cfg.Checkout.DeliveryFee)
	}
	if cfg.Cart.TTL != 24*time.Hour {
		t.Fatalf("unexpected cart ttl %s", cfg.Cart.TTL)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CHECKOUT_DELIVERY_FEE", "2.50")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("CART_TTL", "2h")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if !cfg.Checkout.DeliveryFee.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected delivery fee %s", cfg.Checkout.DeliveryFee)
	}
	if cfg.Stripe.SecretKey != "sk_test_123" {
		t.Fatalf("unexpected stripe key %q", cfg.Stripe.SecretKey)
	}
	if cfg.Cart.TTL != 2*time.Hour {
		t.Fatalf("unexpected cart ttl %s", cfg.Cart.TTL)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
}

func TestFromEnvRejectsNegativeFee(t *testing.T) {
	t.Setenv("CHECKOUT_DELIVERY_FEE", "-1")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for negative delivery fee")
	}
}
