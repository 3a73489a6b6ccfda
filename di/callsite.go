package di

import (
	"reflect"
)

// callSiteKind discriminates the closed set of resolution-plan node
// variants. The set is fixed at design time, so nodes are a tagged variant
// with one evaluation path per kind instead of virtual dispatch.
type callSiteKind uint8

const (
	// constantSite yields a pre-built value.
	constantSite callSiteKind = iota
	// factorySite invokes a provider-aware factory.
	factorySite
	// constructorSite invokes a constructor with resolved arguments.
	constructorSite
	// providerSite yields the resolving provider itself.
	providerSite
	// scopeFactorySite yields a capability creating child scopes.
	scopeFactorySite
	// sliceSite yields all registrations of the element type, in order.
	sliceSite
	// emptySliceSite yields a precomputed empty, non-nil slice.
	emptySliceSite
	// transientSite runs the inner node and tracks disposable results.
	transientSite
	// scopedSite caches the inner result in the resolving provider.
	scopedSite
	// singletonSite caches the inner result in the root provider.
	singletonSite
)

// callSite is an immutable, side-effect-free description of how to produce
// one value. Nodes are built once per requested type and reused for every
// future invocation; only the fields relevant to the kind are set.
type callSite struct {
	kind callSiteKind
	typ  reflect.Type

	// key is the registration identity used to address instance caches.
	// Set on transientSite, scopedSite and singletonSite.
	key   service
	inner *callSite

	value   any
	factory func(*Provider) (any, error)

	ctor   reflect.Value
	hasErr bool
	deps   []*callSite
}

// wrapLifetime wraps a base node with the caching/tracking behavior of the
// registration's lifetime. Constant nodes stay unwrapped: they need no
// caching and the container does not own them.
func wrapLifetime(svc service, base *callSite) *callSite {
	if base.kind == constantSite {
		return base
	}
	wrapped := &callSite{typ: base.typ, key: svc, inner: base}
	switch svc.lifetime() {
	case Scoped:
		wrapped.kind = scopedSite
	case Singleton:
		wrapped.kind = singletonSite
	default:
		wrapped.kind = transientSite
	}
	return wrapped
}

// resolveChain is the set of types currently being resolved on this call
// stack, in order. It only ever reflects the active recursive path, never
// the whole graph.
type resolveChain struct {
	path []reflect.Type
}

func (c *resolveChain) contains(t reflect.Type) bool {
	for _, p := range c.path {
		if p == t {
			return true
		}
	}
	return false
}

func (c *resolveChain) push(t reflect.Type) {
	c.path = append(c.path, t)
}

func (c *resolveChain) pop() {
	c.path = c.path[:len(c.path)-1]
}

// names returns the chain as type names, with the repeated type appended,
// for the circular-dependency error message.
func (c *resolveChain) names(repeated reflect.Type) []string {
	out := make([]string, 0, len(c.path)+1)
	for _, p := range c.path {
		out = append(out, p.String())
	}
	return append(out, repeated.String())
}
