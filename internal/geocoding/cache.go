package geocoding

import (
	"context"
	"time"

	"github.com/alexivanou/city-api/internal/metrics"
	"github.com/alexivanou/city-api/internal/model"
	"github.com/patrickmn/go-cache"
)

// CachedResolver memoises successful lookups of an inner Resolver.
// Failures are never cached so a transient outage does not stick.
type CachedResolver struct {
	inner Resolver
	cache *cache.Cache
}

// NewCachedResolver wraps inner with an in-process cache whose entries live for ttl
func NewCachedResolver(inner Resolver, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Resolve returns a cached result for name when present, otherwise asks the inner resolver
func (r *CachedResolver) Resolve(ctx context.Context, name string) (model.Coordinates, error) {
	key := model.NameKey(name)
	if cached, found := r.cache.Get(key); found {
		metrics.GeocodingCacheHitsTotal.Inc()
		return cached.(model.Coordinates), nil
	}
	metrics.GeocodingCacheMissesTotal.Inc()

	coords, err := r.inner.Resolve(ctx, name)
	if err != nil {
		return model.Coordinates{}, err
	}
	r.cache.Set(key, coords, cache.DefaultExpiration)
	return coords, nil
}
