package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pizzeria-storefront/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (Repository, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, time.Hour, nil), mr
}

func margherita() domain.CartLine {
	return domain.CartLine{ID: "margherita", Name: "Margherita", Price: decimal.RequireFromString("10.99")}
}

func TestGet_MissingCartIsEmpty(t *testing.T) {
	repo, _ := setupTestRedis(t)

	cart, err := repo.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", cart.SessionID)
	assert.True(t, cart.IsEmpty())
}

func TestUpdate_PersistsAndSlidesTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := repo.Update(ctx, "s1", func(c *domain.Cart) error {
		c.Add(margherita())
		c.Add(margherita())
		return nil
	})
	require.NoError(t, err)
	assert.True(t, mr.Exists("cart:s1"))
	assert.Equal(t, time.Hour, mr.TTL("cart:s1"))

	mr.FastForward(30 * time.Minute)
	cart, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.True(t, cart.Total().Equal(decimal.RequireFromString("21.98")))
	assert.Equal(t, time.Hour, mr.TTL("cart:s1"))
}

func TestUpdate_CallbackErrorAbortsWrite(t *testing.T) {
	repo, mr := setupTestRedis(t)
	sentinel := errors.New("nope")

	_, err := repo.Update(context.Background(), "s1", func(c *domain.Cart) error {
		c.Add(margherita())
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.False(t, mr.Exists("cart:s1"))
}

func TestUpdate_ConcurrentAddsAreNotLost(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	const workers = 5
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			for attempt := 0; attempt < 5; attempt++ {
				_, err = repo.Update(ctx, "s1", func(c *domain.Cart) error {
					c.Add(margherita())
					return nil
				})
				if !errors.Is(err, ErrConflict) {
					break
				}
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	cart, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, workers, cart.Lines[0].Quantity)
}

func TestDelete(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := repo.Update(ctx, "s1", func(c *domain.Cart) error {
		c.Add(margherita())
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "s1"))
	assert.False(t, mr.Exists("cart:s1"))
}

func TestGet_InvalidJSON(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("cart:s1", "not json"))

	_, err := repo.Get(context.Background(), "s1")
	assert.Error(t, err)
}
