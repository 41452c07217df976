package webnet

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Credentials is what a platform identity service hands out for one login.
type Credentials struct {
	AccountID         string
	AuthorizationCode string
	IssuerID          int64
}

// Provider performs the platform side of a login. Authorize runs on a pool
// worker and may block.
type Provider interface {
	Authorize(ctx context.Context) (Credentials, error)
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context) (Credentials, error)

func (f ProviderFunc) Authorize(ctx context.Context) (Credentials, error) { return f(ctx) }

// Registry maps network names to providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func newRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// validateName accepts names usable as a query parameter prefix: an ASCII
// letter followed by letters, digits or underscores.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("network name is empty")
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '_'):
		default:
			return fmt.Errorf("network %q invalid name (unexpected %q at %d)", name, c, i)
		}
	}
	return nil
}

// Register adds p under name. Names are unique within a registry.
func (r *Registry) Register(name string, p Provider) error {
	if err := validateName(name); err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("network %q has nil provider", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("network %q already registered", name)
	}
	r.providers[name] = p
	return nil
}

// Lookup returns the provider registered under name.
func (r *Registry) Lookup(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the registered network names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
