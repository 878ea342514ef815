package openweather

import (
	"context"
	"sync"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/observability"
)

// Cache stores resolved coordinates by normalized location key.
type Cache interface {
	Get(key string) (domain.Coordinates, bool)
	Put(key string, coords domain.Coordinates)
}

// MemoryCache is a process-lifetime Cache. Entries are never evicted and
// the last write for a key wins.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]domain.Coordinates
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]domain.Coordinates)}
}

func (c *MemoryCache) Get(key string) (domain.Coordinates, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	coords, ok := c.entries[key]
	return coords, ok
}

func (c *MemoryCache) Put(key string, coords domain.Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = coords
}

// Len returns the number of cached locations.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CachedGeocoder wraps a Geocoder with a location cache. Lookups use the
// normalized key; the inner geocoder always sees the raw query. Failures are
// not cached, so a later request can retry the provider.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   Cache
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, cache Cache, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, cache: cache, metrics: metrics}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, query string) (domain.Coordinates, error) {
	key := domain.NormalizeLocationKey(query)
	if coords, ok := c.cache.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return coords, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	coords, err := c.inner.Geocode(ctx, query)
	if err != nil {
		return domain.Coordinates{}, err
	}
	c.cache.Put(key, coords)
	return coords, nil
}
