package di

import (
	"fmt"

	"github.com/kbukum/dikit/errors"
)

// Resolve resolves T from the provider with type safety, returning an
// error when T is unregistered or the resolution fails.
//
// Example:
//
//	repo, err := di.Resolve[UserRepository](provider)
//	if err != nil {
//	    return fmt.Errorf("failed to get user repository: %w", err)
//	}
func Resolve[T any](p *Provider) (T, error) {
	var zero T
	typ := typeFor[T]()
	v, err := p.GetService(typ)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, errors.NotRegistered(typ.String())
	}
	result, ok := v.(T)
	if !ok {
		return zero, errors.TypeMismatch(typ.String(), fmt.Sprintf("%T", v))
	}
	return result, nil
}

// MustResolve resolves T with type safety, panicking on error. Use this
// in wiring code where a missing registration is a programming error.
func MustResolve[T any](p *Provider) T {
	result, err := Resolve[T](p)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", typeFor[T]().String(), err))
	}
	return result
}

// TryResolve resolves T, returning the zero value and false when T is
// not resolvable. Use this when a dependency is optional.
func TryResolve[T any](p *Provider) (T, bool) {
	result, err := Resolve[T](p)
	if err != nil {
		var zero T
		return zero, false
	}
	return result, true
}

// ResolveAll resolves every registration of T, in registration order. An
// unregistered T yields an empty, non-nil slice.
func ResolveAll[T any](p *Provider) ([]T, error) {
	v, err := p.GetService(typeFor[[]T]())
	if err != nil {
		return nil, err
	}
	result, ok := v.([]T)
	if !ok {
		return nil, errors.TypeMismatch(typeFor[[]T]().String(), fmt.Sprintf("%T", v))
	}
	return result, nil
}
