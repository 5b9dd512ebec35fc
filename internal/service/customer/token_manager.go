package customer

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"pizzeria-storefront/internal/domain"
	tokenrepo "pizzeria-storefront/internal/repository/token"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshKind = "refresh"

var signingMethod = jwt.SigningMethodHS256

type accessClaims struct {
	jwt.RegisteredClaims
}

// tokenManager mints stateless JWT access tokens and stores opaque refresh tokens.
type tokenManager struct {
	repo   tokenrepo.Repository
	secret []byte
	issuer string
	now    func() time.Time
}

func newTokenManager(repo tokenrepo.Repository, secret, issuer string) *tokenManager {
	return &tokenManager{
		repo:   repo,
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

func (m *tokenManager) MintAccess(customerID string, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("jwt secret is required")
	}
	now := m.now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

func (m *tokenManager) ParseAccess(token string) (string, error) {
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

func (m *tokenManager) IssueRefresh(ctx context.Context, customerID string, ttl time.Duration) (string, error) {
	expiresAt := m.now().Add(ttl)
	for i := 0; i < 5; i++ {
		token, err := randomToken()
		if err != nil {
			return "", err
		}
		err = m.repo.Create(ctx, tokenrepo.Token{
			Token:      token,
			CustomerID: customerID,
			Kind:       refreshKind,
			ExpiresAt:  expiresAt,
		})
		if err == nil {
			return token, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", err
	}
	return "", errors.New("token collision")
}

// Consume validates a refresh token and deletes it. Concurrent refreshes with the same
// token see at most one success.
func (m *tokenManager) Consume(ctx context.Context, token string) (string, bool) {
	meta, err := m.repo.Take(ctx, token)
	if err != nil {
		return "", false
	}
	if meta.Kind != refreshKind || m.now().After(meta.ExpiresAt) {
		return "", false
	}
	return meta.CustomerID, true
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
