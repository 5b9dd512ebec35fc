package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pizzeria-storefront/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const maxRetries = 8

type redisRepo struct {
	client *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
	now    func() time.Time
}

// NewRedis stores carts as JSON under cart:<sessionID>. Every read and write slides
// the TTL.
func NewRedis(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) Repository {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &redisRepo{client: client, ttl: ttl, logger: logger, now: time.Now}
}

func (r *redisRepo) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	key := cacheKey(sessionID)
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &domain.Cart{SessionID: sessionID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	if r.ttl > 0 {
		if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
			r.logger.Warn().Err(err).Str("cart_session", sessionID).Msg("cart repo: refresh ttl")
		}
	}
	return decode(sessionID, data)
}

func (r *redisRepo) Update(ctx context.Context, sessionID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	key := cacheKey(sessionID)
	var out *domain.Cart

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		var cart *domain.Cart
		switch {
		case errors.Is(err, redis.Nil):
			cart = &domain.Cart{SessionID: sessionID}
		case err != nil:
			return fmt.Errorf("redis get failed: %w", err)
		default:
			if cart, err = decode(sessionID, data); err != nil {
				return err
			}
		}

		if err := fn(cart); err != nil {
			return err
		}
		cart.UpdatedAt = r.now().UTC()

		encoded, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("marshal cart failed: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, r.ttl)
			return nil
		})
		if err == nil {
			out = cart
		}
		return err
	}

	for i := 0; i < maxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			r.logger.Debug().Str("cart_session", sessionID).Int("attempt", i+1).Msg("cart repo: retrying contended update")
			continue
		}
		return nil, err
	}
	return nil, ErrConflict
}

func (r *redisRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cacheKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func decode(sessionID string, data []byte) (*domain.Cart, error) {
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	cart.SessionID = sessionID
	return &cart, nil
}

func cacheKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
