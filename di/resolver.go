package di

import (
	"reflect"

	"github.com/kbukum/dikit/errors"
)

// resolveCtx threads per-resolution state through call-site evaluation.
// Go mutexes are not reentrant, so the context records which provider
// locks the current goroutine already holds; nested lifetime nodes on the
// same provider then reuse the held lock instead of deadlocking. Lock
// order is always child scope before root, never the reverse, so two
// resolutions can never deadlock against each other.
type resolveCtx struct {
	held map[*Provider]bool
}

func newResolveCtx() *resolveCtx {
	return &resolveCtx{}
}

// locked runs fn under p's lock, acquiring it only if this resolution does
// not hold it already.
func (rc *resolveCtx) locked(p *Provider, fn func() (any, error)) (any, error) {
	if rc.held[p] {
		return fn()
	}
	if rc.held == nil {
		rc.held = make(map[*Provider]bool, 2)
	}
	p.mu.Lock()
	rc.held[p] = true
	defer func() {
		delete(rc.held, p)
		p.mu.Unlock()
	}()
	return fn()
}

// evalCallSite interprets a call-site tree recursively. This is the slow
// generic execution path; compileCallSite produces the equivalent
// specialized form. The two must stay behaviorally indistinguishable.
func evalCallSite(cs *callSite, p *Provider, rc *resolveCtx) (any, error) {
	switch cs.kind {
	case constantSite, emptySliceSite:
		return cs.value, nil

	case providerSite:
		return p, nil

	case scopeFactorySite:
		return ScopeFactory(p.CreateScope), nil

	case factorySite:
		return cs.factory(p)

	case constructorSite:
		args := make([]reflect.Value, len(cs.deps))
		for i, dep := range cs.deps {
			v, err := evalCallSite(dep, p, rc)
			if err != nil {
				return nil, err
			}
			args[i], err = argValue(v, cs.ctor.Type().In(i))
			if err != nil {
				return nil, err
			}
		}
		return invokeConstructor(cs.ctor, args, cs.hasErr)

	case sliceSite:
		out := reflect.MakeSlice(cs.typ, 0, len(cs.deps))
		elem := cs.typ.Elem()
		for _, item := range cs.deps {
			v, err := evalCallSite(item, p, rc)
			if err != nil {
				return nil, err
			}
			ev, err := argValue(v, elem)
			if err != nil {
				return nil, err
			}
			out = reflect.Append(out, ev)
		}
		return out.Interface(), nil

	case transientSite:
		obj, err := evalCallSite(cs.inner, p, rc)
		if err != nil {
			return nil, err
		}
		p.trackDisposable(obj, rc)
		return obj, nil

	case scopedSite:
		return p.getOrCreate(cs.key, rc, func() (any, error) {
			return evalCallSite(cs.inner, p, rc)
		})

	case singletonSite:
		// Redirect to the root before delegating to the shared
		// get-or-create logic; the root's own root is itself.
		root := p.root
		return root.getOrCreate(cs.key, rc, func() (any, error) {
			return evalCallSite(cs.inner, root, rc)
		})

	default:
		return nil, nil
	}
}

// invokeConstructor calls a constructor and unpacks (instance) or
// (instance, error) results. Factory errors propagate unmodified.
func invokeConstructor(ctor reflect.Value, args []reflect.Value, hasErr bool) (any, error) {
	results := ctor.Call(args)
	if hasErr {
		if e := results[1].Interface(); e != nil {
			return nil, e.(error)
		}
	}
	return results[0].Interface(), nil
}

// argValue converts a resolved dependency to a reflect.Value usable as an
// argument or slice element of the expected type; a nil dependency becomes
// the type's zero value. Factories can return anything, so incompatible
// values surface as an error rather than a reflect panic.
func argValue(v any, typ reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(typ), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(typ) {
		return reflect.Value{}, errors.TypeMismatch(typ.String(), rv.Type().String())
	}
	return rv, nil
}
