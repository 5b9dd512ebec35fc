package token

import (
	"context"
	"time"
)

// Token is an opaque refresh token bound to a customer.
type Token struct {
	Token      string
	CustomerID string
	Kind       string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	// Take deletes the token and returns it. A token can be taken once.
	Take(ctx context.Context, token string) (*Token, error)
}
