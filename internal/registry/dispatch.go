// Package registry implements the per-registry adapters that resolve
// content identities and tag lists for monitored images.
package registry

import (
	"sync"
	"time"

	"github.com/user/registry-watch/pkg/errors"
	"github.com/user/registry-watch/pkg/types"
)

// Options configure the adapter set.
type Options struct {
	Timeout   time.Duration
	GHCRToken string
}

// Dispatcher owns one adapter per registry kind and hands out the right one
// for a classified reference. Custom-domain adapters are created on demand
// and reused per domain.
type Dispatcher struct {
	hub  *HubAdapter
	ghcr *OCIAdapter
	quay *OCIAdapter

	mu     sync.Mutex
	custom map[string]*OCIAdapter

	timeout time.Duration
}

// NewDispatcher builds the adapter set.
func NewDispatcher(opts Options) *Dispatcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Dispatcher{
		hub:     NewHubAdapter(timeout),
		ghcr:    NewOCIAdapter("ghcr.io", opts.GHCRToken, timeout),
		quay:    NewOCIAdapter("quay.io", "", timeout),
		custom:  make(map[string]*OCIAdapter),
		timeout: timeout,
	}
}

// ForReference returns the adapter serving the reference's registry kind.
// An unknown kind or a custom reference without a domain is a check failure
// for that image, not a recoverable condition.
func (d *Dispatcher) ForReference(ref types.ImageReference) (types.RegistryAdapter, error) {
	switch ref.Kind {
	case types.RegistryHub:
		return d.hub, nil
	case types.RegistryGHCR:
		return d.ghcr, nil
	case types.RegistryQuay:
		return d.quay, nil
	case types.RegistryCustom:
		if ref.CustomDomain == "" {
			return nil, errors.Wrapf("registry.ForReference", errors.ErrUnsupportedRegistry, "custom reference %s has no domain", ref.FullPath)
		}
		return d.customAdapter(ref.CustomDomain), nil
	default:
		return nil, errors.Wrapf("registry.ForReference", errors.ErrUnsupportedRegistry, "kind %q", ref.Kind)
	}
}

func (d *Dispatcher) customAdapter(domain string) *OCIAdapter {
	d.mu.Lock()
	defer d.mu.Unlock()
	if adapter, ok := d.custom[domain]; ok {
		return adapter
	}
	adapter := NewOCIAdapter(domain, "", d.timeout)
	d.custom[domain] = adapter
	return adapter
}
