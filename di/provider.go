package di

import (
	stderrors "errors"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/dikit/errors"
)

// disposable matches instances the container is responsible for closing.
type disposable interface {
	Close() error
}

// Provider is the per-scope resolution runtime. The root provider is built
// from a Collection; scopes share the root's table and, transitively, its
// singleton store. Every provider carries a reference to the root of its
// hierarchy; the root's points to itself.
type Provider struct {
	table *table
	root  *Provider
	id    string

	// mu guards resolved, disposables and the disposed flag. One lock per
	// provider: the root's serializes all singleton construction across
	// the hierarchy, each scope's only serializes its own scoped work.
	mu       sync.Mutex
	resolved map[service]any
	// resolvedOrder records cache insertion order so disposal can walk
	// cached instances newest-first, dependents before dependencies.
	resolvedOrder []service
	disposables   []disposable
	disposed      bool
}

func newRootProvider(t *table) *Provider {
	p := &Provider{
		table:    t,
		id:       uuid.NewString(),
		resolved: make(map[service]any),
	}
	p.root = p
	return p
}

// ID returns the provider's unique identifier, useful for correlating
// per-scope log lines.
func (p *Provider) ID() string { return p.id }

// IsRoot reports whether this provider is the root of its hierarchy.
func (p *Provider) IsRoot() bool { return p.root == p }

// GetService returns a constructed instance for the requested type, or
// (nil, nil) when the type has no resolvable registration. Circular
// dependencies and constructor failures are returned as errors.
func (p *Provider) GetService(typ reflect.Type) (any, error) {
	p.mu.Lock()
	disposed := p.disposed
	p.mu.Unlock()
	if disposed {
		return nil, errors.Disposed()
	}

	acc, err := p.table.accessorFor(typ)
	if err != nil {
		return nil, err
	}
	return acc(p, newResolveCtx())
}

// CreateScope returns a new provider sharing this provider's root and
// table, with its own empty instance cache and disposables list.
func (p *Provider) CreateScope() *Provider {
	return &Provider{
		table:    p.table,
		root:     p.root,
		id:       uuid.NewString(),
		resolved: make(map[service]any),
	}
}

// getOrCreate implements the lock-guarded at-most-once construction for
// scoped/singleton call sites: only the resolution that finds the key
// absent runs the factory, everyone else observes the cached value.
func (p *Provider) getOrCreate(key service, rc *resolveCtx, build func() (any, error)) (any, error) {
	return rc.locked(p, func() (any, error) {
		if p.disposed {
			return nil, errors.Disposed()
		}
		if v, ok := p.resolved[key]; ok {
			return v, nil
		}
		v, err := build()
		if err != nil {
			return nil, err
		}
		p.resolved[key] = v
		p.resolvedOrder = append(p.resolvedOrder, key)
		return v, nil
	})
}

// trackDisposable records a transient result for cleanup when this
// provider closes. A result that is the provider itself is skipped, so a
// provider can never end up on its own disposal list. A resolution that
// loses a race with Close would otherwise append to an already-drained
// list and leak the instance, so the result is closed on the spot
// instead.
func (p *Provider) trackDisposable(obj any, rc *resolveCtx) {
	if obj == nil || obj == any(p) {
		return
	}
	d, ok := obj.(disposable)
	if !ok {
		return
	}
	var closeNow bool
	rc.locked(p, func() (any, error) {
		if p.disposed {
			closeNow = true
			return nil, nil
		}
		p.disposables = append(p.disposables, d)
		return nil, nil
	})
	if closeNow {
		_ = d.Close()
	}
}

// Close disposes every transient disposable this provider produced, then
// every disposable instance in its own cache (scoped instances, plus all
// singletons when this is the root), in reverse production order. It is
// idempotent: a second call is a no-op.
func (p *Provider) Close() error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return nil
	}
	p.disposed = true
	transients := p.disposables
	p.disposables = nil
	cached := p.resolved
	order := p.resolvedOrder
	p.resolved = make(map[service]any)
	p.resolvedOrder = nil
	p.mu.Unlock()

	var errs []error
	for i := len(transients) - 1; i >= 0; i-- {
		if err := transients[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(order) - 1; i >= 0; i-- {
		v := cached[order[i]]
		if v == any(p) {
			continue
		}
		if d, ok := v.(disposable); ok {
			if err := d.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return errors.DisposalFailed(stderrors.Join(errs...))
	}
	return nil
}
