package di

import (
	"reflect"

	"github.com/kbukum/dikit/errors"
)

// Descriptor describes a single service registration: the requested type,
// its lifetime, and exactly one way to produce it.
type Descriptor struct {
	// Type is the service type resolution requests are keyed by.
	Type reflect.Type
	// Lifetime determines instance caching. Ignored for Instance
	// registrations, which are always singletons.
	Lifetime Lifetime
	// Constructor is a plain constructor func whose parameters are
	// resolved from the container: func(deps...) (T) or func(deps...) (T, error).
	Constructor any
	// Factory produces the instance with direct access to the resolving
	// provider.
	Factory func(*Provider) (any, error)
	// Instance is a pre-built value registered as-is.
	Instance any
}

// Collection is an ordered list of service descriptors. Order matters:
// when a type has multiple registrations, the last one wins for singular
// resolution and all of them appear, in order, for slice resolution.
type Collection struct {
	descriptors []Descriptor
}

// NewCollection creates an empty service collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add appends a descriptor and returns the collection for chaining.
func (c *Collection) Add(d Descriptor) *Collection {
	c.descriptors = append(c.descriptors, d)
	return c
}

// Descriptors returns the registered descriptors in registration order.
func (c *Collection) Descriptors() []Descriptor {
	out := make([]Descriptor, len(c.descriptors))
	copy(out, c.descriptors)
	return out
}

// Build constructs the root provider with default options.
func (c *Collection) Build() (*Provider, error) {
	return c.BuildWithOptions(DefaultOptions())
}

// BuildWithOptions constructs the root provider with the given engine options.
func (c *Collection) BuildWithOptions(opts Options) (*Provider, error) {
	t, err := newTable(c.descriptors, opts)
	if err != nil {
		return nil, err
	}
	return newRootProvider(t), nil
}

// AddTransient registers a constructor for T with transient lifetime.
func AddTransient[T any](c *Collection, constructor any) *Collection {
	return c.Add(Descriptor{Type: typeFor[T](), Lifetime: Transient, Constructor: constructor})
}

// AddScoped registers a constructor for T with scoped lifetime.
func AddScoped[T any](c *Collection, constructor any) *Collection {
	return c.Add(Descriptor{Type: typeFor[T](), Lifetime: Scoped, Constructor: constructor})
}

// AddSingleton registers a constructor for T with singleton lifetime.
func AddSingleton[T any](c *Collection, constructor any) *Collection {
	return c.Add(Descriptor{Type: typeFor[T](), Lifetime: Singleton, Constructor: constructor})
}

// AddInstance registers a pre-built value for T. Instances are served as-is
// on every resolution and are never disposed by the container; the caller
// keeps ownership.
func AddInstance[T any](c *Collection, instance T) *Collection {
	return c.Add(Descriptor{Type: typeFor[T](), Lifetime: Singleton, Instance: instance})
}

// AddFactory registers a provider-aware factory for T with the given lifetime.
func AddFactory[T any](c *Collection, lifetime Lifetime, factory func(*Provider) (T, error)) *Collection {
	return c.Add(Descriptor{
		Type:     typeFor[T](),
		Lifetime: lifetime,
		Factory: func(p *Provider) (any, error) {
			return factory(p)
		},
	})
}

func typeFor[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// validate checks that the descriptor names a type and exactly one
// production strategy.
func (d Descriptor) validate() error {
	if d.Type == nil {
		return errors.InvalidDescriptor("<nil>", "descriptor has no service type")
	}
	n := 0
	if d.Constructor != nil {
		n++
	}
	if d.Factory != nil {
		n++
	}
	if d.Instance != nil {
		n++
	}
	if n != 1 {
		return errors.InvalidDescriptor(d.Type.String(), "exactly one of Constructor, Factory, or Instance must be set")
	}
	if d.Instance != nil && !reflect.TypeOf(d.Instance).AssignableTo(d.Type) {
		return errors.InvalidDescriptor(d.Type.String(), "instance is not assignable to the service type")
	}
	return nil
}
