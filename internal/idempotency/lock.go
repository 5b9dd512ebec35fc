package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when the lock is already held.
var ErrLocked = errors.New("lock is held")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a per-key in-flight lock with a TTL. Only the holder's token can release it.
type Lock struct {
	store Store
	ttl   time.Duration
	scope string
}

func NewLock(store Store, ttl time.Duration, scope string) (*Lock, error) {
	if store == nil {
		return nil, errors.New("lock store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &Lock{store: store, ttl: ttl, scope: scope}, nil
}

// Acquire takes the lock for key and returns a release func. ErrLocked means another
// holder has it.
func (l *Lock) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	if key == "" {
		return nil, errors.New("key is required")
	}
	k := fmt.Sprintf("lock:%s:%s", l.scope, key)
	token := uuid.NewString()

	ok, err := l.store.SetNX(ctx, k, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.store, []string{k}, token).Err()
	}
	return release, nil
}
