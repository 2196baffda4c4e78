package cache

import "github.com/user/registry-watch/pkg/types"

// adapterProvider matches the checker's provider contract without importing
// it.
type adapterProvider interface {
	ForReference(ref types.ImageReference) (types.RegistryAdapter, error)
}

// Provider decorates every adapter a dispatcher hands out with the cache.
type Provider struct {
	inner adapterProvider
	cache *RegistryCache
}

// WrapProvider wraps an adapter provider so all its adapters go through the
// cache.
func WrapProvider(inner adapterProvider, cache *RegistryCache) *Provider {
	return &Provider{inner: inner, cache: cache}
}

// ForReference returns the cached adapter for the reference's registry kind.
func (p *Provider) ForReference(ref types.ImageReference) (types.RegistryAdapter, error) {
	adapter, err := p.inner.ForReference(ref)
	if err != nil {
		return nil, err
	}
	return Wrap(adapter, p.cache), nil
}
