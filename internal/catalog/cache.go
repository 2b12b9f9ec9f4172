package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-checkout/internal/obs"
)

const productKeyPrefix = "catalog:product:"

// CachedLookup serves products from Redis and falls through to the wrapped
// Lookup for ids it has not seen. Only products returned by the wrapped Lookup
// are cached, so the visibility filter still applies.
type CachedLookup struct {
	next   Lookup
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedLookup constructs a cache in front of next. A nil client disables caching.
func NewCachedLookup(next Lookup, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedLookup {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedLookup{next: next, client: client, ttl: ttl, logger: logger}
}

// FindVisibleProducts implements Lookup.
func (c *CachedLookup) FindVisibleProducts(ctx context.Context, productIDs []string) ([]Product, error) {
	ids := DistinctIDs(productIDs)
	if c.client == nil || len(ids) == 0 {
		return c.next.FindVisibleProducts(ctx, ids)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn().Err(err).Msg("catalog cache read failed")
		obs.ObserveCatalogCache("error", len(ids))
		return c.next.FindVisibleProducts(ctx, ids)
	}

	products := make([]Product, 0, len(ids))
	misses := make([]string, 0, len(ids))
	for i, raw := range values {
		payload, ok := raw.(string)
		if !ok {
			misses = append(misses, ids[i])
			continue
		}
		var p Product
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			misses = append(misses, ids[i])
			continue
		}
		products = append(products, p)
	}
	obs.ObserveCatalogCache("hit", len(products))
	obs.ObserveCatalogCache("miss", len(misses))
	if len(misses) == 0 {
		return products, nil
	}

	fetched, err := c.next.FindVisibleProducts(ctx, misses)
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, fetched); err != nil {
		c.logger.Warn().Err(err).Msg("catalog cache write failed")
	}
	return append(products, fetched...), nil
}

// Invalidate drops cached documents for the given product ids.
func (c *CachedLookup) Invalidate(ctx context.Context, productIDs ...string) error {
	if c.client == nil || len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(productIDs))
	for _, id := range DistinctIDs(productIDs) {
		keys = append(keys, productKey(id))
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *CachedLookup) store(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, p := range products {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		pipe.Set(ctx, productKey(p.ProductID), data, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func productKey(id string) string {
	return productKeyPrefix + id
}
