package webnet

import "fmt"

// Registration is a deferred provider registration. Packages that talk to a
// platform expose values of this type so callers opt in explicitly instead
// of relying on import side effects:
//
//	r, _ := webnet.NewRegistry(webnet.StaticProvider("dev", creds), webnet.EnvProviders("psn"))
type Registration func(r *Registry) error

// NewProvider wraps fn into a Registration for the named network.
func NewProvider(name string, fn ProviderFunc) Registration {
	return func(r *Registry) error {
		return r.Register(name, fn)
	}
}

// Group combines registrations into one, e.g.
//
//	webnet.Apply(r, webnet.Group(a, b), c)
func Group(regs ...Registration) Registration {
	return func(r *Registry) error { return Apply(r, regs...) }
}

// Apply runs registrations against r in order. Nil entries are skipped. The
// first failure stops it and is returned together with the networks that
// were registered before it, so a partially applied bundle is visible.
func Apply(r *Registry, regs ...Registration) error {
	before := len(r.Names())
	for i, reg := range regs {
		if reg == nil {
			continue
		}
		if err := reg(r); err != nil {
			if added := len(r.Names()) - before; added > 0 {
				return fmt.Errorf("registration %d (after %d networks added): %w", i, added, err)
			}
			return fmt.Errorf("registration %d: %w", i, err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding the networks of regs. On failure no
// registry is returned.
func NewRegistry(regs ...Registration) (*Registry, error) {
	r := newRegistry()
	if err := Apply(r, regs...); err != nil {
		return nil, err
	}
	return r, nil
}
