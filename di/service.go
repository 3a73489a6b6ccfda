package di

import (
	"reflect"

	"github.com/kbukum/dikit/errors"
)

// service is one concrete registration: a lifetime plus the capability to
// produce the base (pre-lifetime-wrapping) call-site node for itself. The
// service value also acts as the instance-cache key inside a provider,
// because a type may carry several registrations.
type service interface {
	lifetime() Lifetime
	buildCallSite(t *table, chain *resolveChain) (*callSite, error)
}

// entry is the ordered chain of registrations for one requested type. The
// last registration is the singular resolution target; the full list feeds
// slice resolution.
type entry struct {
	services []service
}

func (e *entry) add(s service) {
	e.services = append(e.services, s)
}

func (e *entry) last() service {
	return e.services[len(e.services)-1]
}

var errorType = reflect.TypeFor[error]()

// constructorService builds instances by invoking a plain constructor func
// whose parameters are themselves resolved from the table.
type constructorService struct {
	lt   Lifetime
	typ  reflect.Type
	ctor reflect.Value
}

func newConstructorService(typ reflect.Type, lt Lifetime, constructor any) (*constructorService, error) {
	fn := reflect.ValueOf(constructor)
	if fn.Kind() != reflect.Func {
		return nil, errors.InvalidConstructor(typ.String(), "constructor must be a function")
	}
	ft := fn.Type()
	if ft.IsVariadic() {
		return nil, errors.InvalidConstructor(typ.String(), "variadic constructors are not supported")
	}
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, errors.InvalidConstructor(typ.String(), "second return value must be error")
		}
	default:
		return nil, errors.InvalidConstructor(typ.String(), "constructor must return (instance) or (instance, error)")
	}
	if !ft.Out(0).AssignableTo(typ) {
		return nil, errors.InvalidConstructor(typ.String(), "constructor result is not assignable to the service type")
	}
	return &constructorService{lt: lt, typ: typ, ctor: fn}, nil
}

func (s *constructorService) lifetime() Lifetime { return s.lt }

func (s *constructorService) buildCallSite(t *table, chain *resolveChain) (*callSite, error) {
	ft := s.ctor.Type()
	deps := make([]*callSite, ft.NumIn())
	for i := range deps {
		paramType := ft.In(i)
		dep, err := t.buildCallSite(paramType, chain)
		if err != nil {
			return nil, err
		}
		if dep == nil {
			return nil, errors.DependencyNotRegistered(paramType.String(), s.typ.String())
		}
		deps[i] = dep
	}
	return &callSite{
		kind:   constructorSite,
		typ:    s.typ,
		ctor:   s.ctor,
		hasErr: ft.NumOut() == 2,
		deps:   deps,
	}, nil
}

// factoryService builds instances through a provider-aware factory func.
type factoryService struct {
	lt  Lifetime
	typ reflect.Type
	fn  func(*Provider) (any, error)
}

func (s *factoryService) lifetime() Lifetime { return s.lt }

func (s *factoryService) buildCallSite(*table, *resolveChain) (*callSite, error) {
	return &callSite{kind: factorySite, typ: s.typ, factory: s.fn}, nil
}

// instanceService serves a caller-owned, pre-built value.
type instanceService struct {
	typ   reflect.Type
	value any
}

func (s *instanceService) lifetime() Lifetime { return Singleton }

func (s *instanceService) buildCallSite(*table, *resolveChain) (*callSite, error) {
	return &callSite{kind: constantSite, typ: s.typ, value: s.value}, nil
}

// providerService is the built-in registration resolving a provider to
// itself, so services can depend on *Provider directly.
type providerService struct{}

func (providerService) lifetime() Lifetime { return Transient }

func (providerService) buildCallSite(*table, *resolveChain) (*callSite, error) {
	return &callSite{kind: providerSite, typ: providerType}, nil
}

// scopeFactoryService is the built-in registration resolving to a
// capability that creates child scopes of the current provider.
type scopeFactoryService struct{}

func (scopeFactoryService) lifetime() Lifetime { return Transient }

func (scopeFactoryService) buildCallSite(*table, *resolveChain) (*callSite, error) {
	return &callSite{kind: scopeFactorySite, typ: scopeFactoryType}, nil
}

func serviceForDescriptor(d Descriptor) (service, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	switch {
	case d.Instance != nil:
		return &instanceService{typ: d.Type, value: d.Instance}, nil
	case d.Factory != nil:
		return &factoryService{lt: d.Lifetime, typ: d.Type, fn: d.Factory}, nil
	default:
		return newConstructorService(d.Type, d.Lifetime, d.Constructor)
	}
}
