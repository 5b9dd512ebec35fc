package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the subset of the redis client the guard and lock need.
type Store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	redis.Scripter
}

// Guard marks ids as seen so duplicate deliveries can be dropped.
type Guard struct {
	store Store
	ttl   time.Duration
	scope string
}

func NewGuard(store Store, ttl time.Duration, scope string) (*Guard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &Guard{store: store, ttl: ttl, scope: scope}, nil
}

// CheckAndMark reports whether id was already marked, marking it otherwise.
func (g *Guard) CheckAndMark(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, errors.New("id is required")
	}
	set, err := g.store.SetNX(ctx, g.key(id), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete unmarks id so a redelivery is processed again.
func (g *Guard) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("id is required")
	}
	return g.store.Del(ctx, g.key(id)).Err()
}

func (g *Guard) key(id string) string {
	return fmt.Sprintf("idempotency:%s:%s", g.scope, id)
}
