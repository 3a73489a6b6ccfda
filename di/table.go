package di

import (
	"reflect"
	"sync"

	"github.com/kbukum/dikit/errors"
)

// ScopeFactory creates a child scope of the provider it was resolved from.
// It is a built-in registration, available to any constructor:
//
//	func NewWorker(scopes di.ScopeFactory) *Worker { ... }
type ScopeFactory func() *Provider

var (
	providerType     = reflect.TypeFor[*Provider]()
	scopeFactoryType = reflect.TypeFor[ScopeFactory]()
)

// table is the resolution table: an immutable map from requested type to
// its registration chain, plus the mutable accessor cache. One table is
// shared by the root and every scope derived from it.
type table struct {
	entries map[reflect.Type]*entry
	opts    Options

	// accessors maps requested type -> accessor. Entries are replaced
	// in-place when a plan is compiled; concurrent lookups observe either
	// the interpreted or the compiled form, never a partial one.
	accessors sync.Map
}

// newTable builds the table from the descriptor list, seeded with the
// built-in provider and scope-factory registrations. User registrations
// come later in order, so they win under last-registered-wins.
func newTable(descriptors []Descriptor, opts Options) (*table, error) {
	if opts.CompileThreshold == 0 {
		opts.CompileThreshold = DefaultOptions().CompileThreshold
	}
	t := &table{
		entries: make(map[reflect.Type]*entry, len(descriptors)+2),
		opts:    opts,
	}
	t.register(providerType, providerService{})
	t.register(scopeFactoryType, scopeFactoryService{})

	for _, d := range descriptors {
		svc, err := serviceForDescriptor(d)
		if err != nil {
			return nil, err
		}
		t.register(d.Type, svc)
	}
	return t, nil
}

func (t *table) register(typ reflect.Type, svc service) {
	e := t.entries[typ]
	if e == nil {
		e = &entry{}
		t.entries[typ] = e
	}
	e.add(svc)
}

// tryGetEntry returns the registration chain for a type, or nil.
func (t *table) tryGetEntry(typ reflect.Type) *entry {
	return t.entries[typ]
}

// buildCallSite constructs the resolution plan for a requested type via
// depth-first traversal with cycle detection. A nil, nil return means the
// type has no plan (absent), which is a valid result, not an error.
func (t *table) buildCallSite(typ reflect.Type, chain *resolveChain) (*callSite, error) {
	if chain.contains(typ) {
		return nil, errors.CircularDependency(typ.String(), chain.names(typ))
	}
	chain.push(typ)
	defer chain.pop()

	if e := t.tryGetEntry(typ); e != nil {
		svc := e.last()
		base, err := svc.buildCallSite(t, chain)
		if err != nil {
			return nil, err
		}
		return wrapLifetime(svc, base), nil
	}

	if typ.Kind() == reflect.Slice {
		return t.buildSliceCallSite(typ, chain)
	}
	return nil, nil
}

// buildSliceCallSite handles the generic sequence-of-T shape: a registered
// element type yields every registration in registration order, each under
// its own lifetime policy; an unregistered element type yields a
// precomputed empty slice, which is valid-but-empty rather than absent.
func (t *table) buildSliceCallSite(typ reflect.Type, chain *resolveChain) (*callSite, error) {
	e := t.tryGetEntry(typ.Elem())
	if e == nil {
		return &callSite{
			kind:  emptySliceSite,
			typ:   typ,
			value: reflect.MakeSlice(typ, 0, 0).Interface(),
		}, nil
	}

	items := make([]*callSite, len(e.services))
	for i, svc := range e.services {
		base, err := svc.buildCallSite(t, chain)
		if err != nil {
			return nil, err
		}
		items[i] = wrapLifetime(svc, base)
	}
	return &callSite{kind: sliceSite, typ: typ, deps: items}, nil
}

// accessorFor returns the runnable accessor for a type, lazily building
// the call-site graph if absent. Concurrent callers may race to build;
// only one result is retained, the rest is wasted work, which is safe
// because plan construction is pure.
func (t *table) accessorFor(typ reflect.Type) (accessor, error) {
	if v, ok := t.accessors.Load(typ); ok {
		return v.(accessor), nil
	}

	site, err := t.buildCallSite(typ, &resolveChain{})
	if err != nil {
		return nil, err
	}
	acc := t.realize(typ, site)
	actual, _ := t.accessors.LoadOrStore(typ, acc)
	return actual.(accessor), nil
}
