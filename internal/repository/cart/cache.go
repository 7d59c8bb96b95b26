package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shopcart/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheTTL = 30 * time.Minute

// redisClient is the slice of go-redis used by the cache decorator.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// cachedRepo is a read-through cache over another cart Repository. Cache
// failures degrade to the inner repository and are logged, never surfaced.
type cachedRepo struct {
	inner  Repository
	rdb    redisClient
	logger *zap.Logger
}

// NewCached wraps repo with a Redis cache-aside layer.
func NewCached(repo Repository, rdb redisClient, logger *zap.Logger) Repository {
	return &cachedRepo{inner: repo, rdb: rdb, logger: logger}
}

func cacheKey(ownerKey string) string {
	return "cart:" + ownerKey
}

func (r *cachedRepo) GetByOwner(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	raw, err := r.rdb.Get(ctx, cacheKey(ownerKey)).Bytes()
	if err == nil {
		var cart domain.Cart
		if err := json.Unmarshal(raw, &cart); err == nil {
			return &cart, nil
		}
		// Corrupt entry: drop it and fall through to the store.
		r.rdb.Del(ctx, cacheKey(ownerKey))
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("cart cache read failed", zap.String("owner_key", ownerKey), zap.Error(err))
	}

	cart, err := r.inner.GetByOwner(ctx, ownerKey)
	if err != nil {
		return nil, err
	}
	r.store(ctx, cart)
	return cart, nil
}

func (r *cachedRepo) AddLine(ctx context.Context, ownerKey string, line domain.LineItem) (*domain.Cart, error) {
	cart, err := r.inner.AddLine(ctx, ownerKey, line)
	if err != nil {
		return nil, err
	}
	r.store(ctx, cart)
	return cart, nil
}

func (r *cachedRepo) RemoveLine(ctx context.Context, ownerKey, productID string) (*domain.Cart, error) {
	cart, err := r.inner.RemoveLine(ctx, ownerKey, productID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, cart)
	return cart, nil
}

func (r *cachedRepo) SetQuantity(ctx context.Context, ownerKey, productID string, quantity int) (*domain.Cart, error) {
	cart, err := r.inner.SetQuantity(ctx, ownerKey, productID, quantity)
	if err != nil {
		return nil, err
	}
	r.store(ctx, cart)
	return cart, nil
}

func (r *cachedRepo) Clear(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	cart, err := r.inner.Clear(ctx, ownerKey)
	if err != nil {
		return nil, err
	}
	r.store(ctx, cart)
	return cart, nil
}

func (r *cachedRepo) Merge(ctx context.Context, fromKey, toKey string) (*domain.Cart, error) {
	cart, err := r.inner.Merge(ctx, fromKey, toKey)
	if err != nil {
		return nil, err
	}
	if err := r.rdb.Del(ctx, cacheKey(fromKey)).Err(); err != nil {
		r.logger.Warn("cart cache invalidation failed", zap.String("owner_key", fromKey), zap.Error(err))
	}
	r.store(ctx, cart)
	return cart, nil
}

func (r *cachedRepo) Delete(ctx context.Context, ownerKey string) error {
	if err := r.inner.Delete(ctx, ownerKey); err != nil {
		return err
	}
	if err := r.rdb.Del(ctx, cacheKey(ownerKey)).Err(); err != nil {
		r.logger.Warn("cart cache invalidation failed", zap.String("owner_key", ownerKey), zap.Error(err))
	}
	return nil
}

func (r *cachedRepo) store(ctx context.Context, cart *domain.Cart) {
	raw, err := json.Marshal(cart)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, cacheKey(cart.OwnerKey), raw, cacheTTL).Err(); err != nil {
		r.logger.Warn("cart cache write failed", zap.String("owner_key", cart.OwnerKey), zap.Error(err))
	}
}
