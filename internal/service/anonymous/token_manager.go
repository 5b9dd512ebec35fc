package anonymous

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type tokenManager struct {
	client *redis.Client
}

func newTokenManager(client *redis.Client) *tokenManager {
	return &tokenManager{client: client}
}

func (m *tokenManager) Issue(ctx context.Context, sessionID string, ttl time.Duration) (string, error) {
	for i := 0; i < 5; i++ {
		token, err := randomToken()
		if err != nil {
			return "", err
		}
		ok, err := m.client.SetNX(ctx, tokenKey(token), sessionID, ttl).Result()
		if err != nil {
			return "", fmt.Errorf("store cart session: %w", err)
		}
		if ok {
			return token, nil
		}
	}
	return "", errors.New("token collision")
}

// Validate returns the session id for token and slides its expiry.
func (m *tokenManager) Validate(ctx context.Context, token string, ttl time.Duration) (string, bool, error) {
	key := tokenKey(token)
	sessionID, err := m.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if err := m.client.Expire(ctx, key, ttl).Err(); err != nil {
		return "", false, err
	}
	return sessionID, true, nil
}

func tokenKey(token string) string {
	return "cart_session:" + token
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
