package anonymous

import (
	"context"
	"time"

	"pizzeria-storefront/internal/apperr"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrInvalidToken = apperr.New(apperr.CodeUnauthenticated, "invalid cart session")

// Service issues anonymous cart session tokens. A token maps to the session id that
// keys the cart.
type Service struct {
	tokens *tokenManager
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		tokens: newTokenManager(client),
		ttl:    ttl,
	}
}

// Issue creates a new cart session and returns its token and id.
func (s *Service) Issue(ctx context.Context) (token, sessionID string, err error) {
	sessionID = uuid.NewString()
	token, err = s.tokens.Issue(ctx, sessionID, s.ttl)
	if err != nil {
		return "", "", err
	}
	return token, sessionID, nil
}

// LookupByToken resolves a token to its session id and extends its lifetime.
func (s *Service) LookupByToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	sessionID, ok, err := s.tokens.Validate(ctx, token, s.ttl)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeDependency, err, "cart session store unavailable")
	}
	if !ok {
		return "", ErrInvalidToken
	}
	return sessionID, nil
}

func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}
