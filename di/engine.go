package di

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/kbukum/dikit/logger"
)

// accessor is a runnable, cached entry point that executes a call-site
// tree to produce an instance for one requested type.
type accessor func(p *Provider, rc *resolveCtx) (any, error)

// realize turns a call-site tree into its initial interpreted accessor.
// The accessor counts invocations; once the plan has proven reusable it
// schedules compilation into a specialized form off the calling path and
// swaps the cache entry in place. Callers racing across the swap observe
// either form, which is harmless because both are behaviorally identical.
func (t *table) realize(typ reflect.Type, site *callSite) accessor {
	if site == nil {
		// Absent registration: a cached nil result keeps repeated
		// misses O(1).
		return func(*Provider, *resolveCtx) (any, error) {
			return nil, nil
		}
	}

	if !t.opts.Compilation {
		return func(p *Provider, rc *resolveCtx) (any, error) {
			return evalCallSite(site, p, rc)
		}
	}

	var (
		calls       atomic.Uint32
		compileOnce sync.Once
	)
	threshold := t.opts.CompileThreshold

	return func(p *Provider, rc *resolveCtx) (any, error) {
		if calls.Load() < threshold && calls.Add(1) >= threshold {
			compileOnce.Do(func() {
				go t.compileAndSwap(typ, site)
			})
		}
		return evalCallSite(site, p, rc)
	}
}

// compileAndSwap builds the compiled accessor for a plan and installs it
// in the accessor cache. Runs on its own goroutine, never blocking a
// resolution; the sync.Map store is the atomic publication point.
func (t *table) compileAndSwap(typ reflect.Type, site *callSite) {
	compiled := compileCallSite(site)
	t.accessors.Store(typ, compiled)
	logger.Debug("resolution plan compiled", logger.Fields(
		"type", typ.String(),
	))
}

// compileCallSite flattens a call-site tree into specialized closures,
// bottom-up: every node's children are compiled once, and the resulting
// accessor performs no tree walking or kind switching at invocation time.
// Locking, caching, and disposal tracking are shared with the interpreter
// through the same Provider primitives, keeping both forms observably
// identical.
func compileCallSite(cs *callSite) accessor {
	switch cs.kind {
	case constantSite, emptySliceSite:
		value := cs.value
		return func(*Provider, *resolveCtx) (any, error) {
			return value, nil
		}

	case providerSite:
		return func(p *Provider, _ *resolveCtx) (any, error) {
			return p, nil
		}

	case scopeFactorySite:
		return func(p *Provider, _ *resolveCtx) (any, error) {
			return ScopeFactory(p.CreateScope), nil
		}

	case factorySite:
		factory := cs.factory
		return func(p *Provider, _ *resolveCtx) (any, error) {
			return factory(p)
		}

	case constructorSite:
		ctor := cs.ctor
		hasErr := cs.hasErr
		argTypes := make([]reflect.Type, len(cs.deps))
		deps := make([]accessor, len(cs.deps))
		for i, dep := range cs.deps {
			argTypes[i] = ctor.Type().In(i)
			deps[i] = compileCallSite(dep)
		}
		return func(p *Provider, rc *resolveCtx) (any, error) {
			args := make([]reflect.Value, len(deps))
			for i, dep := range deps {
				v, err := dep(p, rc)
				if err != nil {
					return nil, err
				}
				args[i], err = argValue(v, argTypes[i])
				if err != nil {
					return nil, err
				}
			}
			return invokeConstructor(ctor, args, hasErr)
		}

	case sliceSite:
		sliceType := cs.typ
		elemType := cs.typ.Elem()
		items := make([]accessor, len(cs.deps))
		for i, item := range cs.deps {
			items[i] = compileCallSite(item)
		}
		return func(p *Provider, rc *resolveCtx) (any, error) {
			out := reflect.MakeSlice(sliceType, 0, len(items))
			for _, item := range items {
				v, err := item(p, rc)
				if err != nil {
					return nil, err
				}
				ev, err := argValue(v, elemType)
				if err != nil {
					return nil, err
				}
				out = reflect.Append(out, ev)
			}
			return out.Interface(), nil
		}

	case transientSite:
		inner := compileCallSite(cs.inner)
		return func(p *Provider, rc *resolveCtx) (any, error) {
			obj, err := inner(p, rc)
			if err != nil {
				return nil, err
			}
			p.trackDisposable(obj, rc)
			return obj, nil
		}

	case scopedSite:
		inner := compileCallSite(cs.inner)
		key := cs.key
		return func(p *Provider, rc *resolveCtx) (any, error) {
			return p.getOrCreate(key, rc, func() (any, error) {
				return inner(p, rc)
			})
		}

	case singletonSite:
		inner := compileCallSite(cs.inner)
		key := cs.key
		return func(p *Provider, rc *resolveCtx) (any, error) {
			root := p.root
			return root.getOrCreate(key, rc, func() (any, error) {
				return inner(root, rc)
			})
		}

	default:
		return func(*Provider, *resolveCtx) (any, error) {
			return nil, nil
		}
	}
}
