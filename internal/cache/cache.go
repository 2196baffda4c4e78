// Package cache memoizes registry adapter responses with a TTL.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/registry-watch/pkg/types"
)

// entry is one cached adapter response.
type entry struct {
	tags      []string
	identity  types.ContentIdentity
	timestamp time.Time
	ttl       time.Duration
}

func (e *entry) expired() bool {
	return time.Since(e.timestamp) > e.ttl
}

// Stats holds cache usage counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int64 `json:"size"`
}

// RegistryCache is an in-memory TTL cache for adapter responses.
type RegistryCache struct {
	entries    sync.Map
	defaultTTL time.Duration
	hits       int64
	misses     int64
	size       int64
}

// New creates a cache with the given default TTL.
func New(ttl time.Duration) *RegistryCache {
	return &RegistryCache{defaultTTL: ttl}
}

// Stats returns current counters.
func (c *RegistryCache) Stats() Stats {
	return Stats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
		Size:   atomic.LoadInt64(&c.size),
	}
}

func (c *RegistryCache) get(key string) (*entry, bool) {
	value, ok := c.entries.Load(key)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	e := value.(*entry)
	if e.expired() {
		c.entries.Delete(key)
		atomic.AddInt64(&c.size, -1)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&c.hits, 1)
	return e, true
}

func (c *RegistryCache) set(key string, e *entry) {
	e.timestamp = time.Now()
	e.ttl = c.defaultTTL
	if _, existed := c.entries.Load(key); !existed {
		atomic.AddInt64(&c.size, 1)
	}
	c.entries.Store(key, e)
}

// CachedAdapter wraps a RegistryAdapter with response caching. Degraded
// identities are never cached: the next check should retry the registry.
type CachedAdapter struct {
	adapter types.RegistryAdapter
	cache   *RegistryCache
}

// Wrap decorates an adapter with the cache.
func Wrap(adapter types.RegistryAdapter, cache *RegistryCache) *CachedAdapter {
	return &CachedAdapter{adapter: adapter, cache: cache}
}

// Name returns the underlying adapter's registry host.
func (c *CachedAdapter) Name() string {
	return c.adapter.Name()
}

// FetchContentID resolves the content identity, consulting the cache first.
func (c *CachedAdapter) FetchContentID(ctx context.Context, ref types.ImageReference, tag string) (types.ContentIdentity, error) {
	key := c.adapter.Name() + "/" + ref.Repository() + ":" + tag + "#id"
	if e, ok := c.cache.get(key); ok {
		return e.identity, nil
	}

	identity, err := c.adapter.FetchContentID(ctx, ref, tag)
	if err != nil {
		return identity, err
	}
	if !identity.Degraded {
		c.cache.set(key, &entry{identity: identity})
	}
	return identity, nil
}

// FetchAllTags lists tags, consulting the cache first. Empty lists are not
// cached so registries that start exposing tags are picked up.
func (c *CachedAdapter) FetchAllTags(ctx context.Context, ref types.ImageReference) ([]string, error) {
	key := c.adapter.Name() + "/" + ref.Repository() + "#tags"
	if e, ok := c.cache.get(key); ok {
		return e.tags, nil
	}

	tags, err := c.adapter.FetchAllTags(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		copied := make([]string, len(tags))
		copy(copied, tags)
		c.cache.set(key, &entry{tags: copied})
	}
	return tags, nil
}
