package di

import (
	"strings"
	"testing"

	"github.com/kbukum/dikit/errors"
)

type cycleA struct{ b *cycleB }
type cycleB struct{ a *cycleA }

func newCycleA(b *cycleB) *cycleA { return &cycleA{b: b} }
func newCycleB(a *cycleA) *cycleB { return &cycleB{a: a} }

func buildCycle(t *testing.T) *Provider {
	t.Helper()
	c := NewCollection()
	AddTransient[*cycleA](c, newCycleA)
	AddTransient[*cycleB](c, newCycleB)
	p, err := c.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return p
}

func TestCircularDependencyDetected(t *testing.T) {
	p := buildCycle(t)

	_, err := p.GetService(typeFor[*cycleA]())
	if !errors.HasCode(err, errors.ErrCodeCircularDependency) {
		t.Fatalf("expected CIRCULAR_DEPENDENCY, got %v", err)
	}
	if !strings.Contains(err.Error(), "cycleA") {
		t.Errorf("expected offending type in message, got %q", err.Error())
	}
}

func TestCircularDependencyRegardlessOfOrder(t *testing.T) {
	// Entering the cycle from either side must fail, on every attempt.
	p := buildCycle(t)
	for i := 0; i < 3; i++ {
		if _, err := p.GetService(typeFor[*cycleB]()); !errors.HasCode(err, errors.ErrCodeCircularDependency) {
			t.Fatalf("attempt %d: expected CIRCULAR_DEPENDENCY, got %v", i, err)
		}
		if _, err := p.GetService(typeFor[*cycleA]()); !errors.HasCode(err, errors.ErrCodeCircularDependency) {
			t.Fatalf("attempt %d: expected CIRCULAR_DEPENDENCY, got %v", i, err)
		}
	}
}

type selfCycle struct{}

func TestSelfDependencyDetected(t *testing.T) {
	c := NewCollection()
	AddTransient[*selfCycle](c, func(s *selfCycle) *selfCycle { return s })
	p, _ := c.Build()

	_, err := p.GetService(typeFor[*selfCycle]())
	if !errors.HasCode(err, errors.ErrCodeCircularDependency) {
		t.Fatalf("expected CIRCULAR_DEPENDENCY for self-dependency, got %v", err)
	}
}

func TestCycleErrorIncludesPath(t *testing.T) {
	p := buildCycle(t)
	_, err := p.GetService(typeFor[*cycleA]())
	msg := err.Error()
	if !strings.Contains(msg, "->") {
		t.Errorf("expected resolution path in message, got %q", msg)
	}
}

func TestMissingDependencyIsError(t *testing.T) {
	// A dependency missing from the registry is an error, unlike an
	// absent top-level request which yields nil.
	c := NewCollection()
	AddTransient[*widget](c, newWidget)
	p, _ := c.Build()

	_, err := p.GetService(typeFor[*widget]())
	if !errors.HasCode(err, errors.ErrCodeDependencyNotRegistered) {
		t.Fatalf("expected DEPENDENCY_NOT_REGISTERED, got %v", err)
	}
}

func TestSliceOfUnregisteredIsEmptyNotNil(t *testing.T) {
	p, _ := NewCollection().Build()

	v, err := p.GetService(typeFor[[]testLogger]())
	if err != nil {
		t.Fatalf("GetService failed: %v", err)
	}
	loggers, ok := v.([]testLogger)
	if !ok {
		t.Fatalf("expected []testLogger, got %T", v)
	}
	if loggers == nil {
		t.Error("expected empty slice, not nil")
	}
	if len(loggers) != 0 {
		t.Errorf("expected zero length, got %d", len(loggers))
	}
}

func TestSliceYieldsAllRegistrationsInOrder(t *testing.T) {
	c := NewCollection()
	AddInstance[string](c, "one")
	AddInstance[string](c, "two")
	AddInstance[string](c, "three")
	p, _ := c.Build()

	all, err := ResolveAll[string](p)
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	want := []string{"one", "two", "three"}
	if len(all) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(all))
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("expected registration order %v, got %v", want, all)
		}
	}
}

func TestSliceSharesInstanceWithSingular(t *testing.T) {
	c := NewCollection()
	AddSingleton[testLogger](c, newConsoleLogger)
	p, _ := c.Build()

	single := MustResolve[testLogger](p)
	all, err := ResolveAll[testLogger](p)
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one registration, got %d", len(all))
	}
	if all[0] != single {
		t.Error("expected slice and singular resolution to share the singleton")
	}
}

func TestSliceItemsHonorLifetimes(t *testing.T) {
	c := NewCollection()
	AddTransient[*consoleLogger](c, newConsoleLogger)
	p, _ := c.Build()

	first, _ := ResolveAll[*consoleLogger](p)
	second, _ := ResolveAll[*consoleLogger](p)
	if first[0] == second[0] {
		t.Error("expected transient slice items rebuilt per resolution")
	}
}

func TestSliceCycleDetected(t *testing.T) {
	c := NewCollection()
	AddTransient[*fanInDep](c, func(deps []*fanInDep) *fanInDep { return &fanInDep{} })
	p, _ := c.Build()

	_, err := p.GetService(typeFor[[]*fanInDep]())
	if !errors.HasCode(err, errors.ErrCodeCircularDependency) {
		t.Fatalf("expected CIRCULAR_DEPENDENCY through slice edge, got %v", err)
	}
}

type fanInDep struct{}

func TestInvalidConstructorRejectedAtBuild(t *testing.T) {
	cases := []struct {
		name string
		ctor any
	}{
		{"not a function", 42},
		{"no results", func() {}},
		{"bad second result", func() (*widget, string) { return nil, "" }},
		{"too many results", func() (*widget, error, error) { return nil, nil, nil }},
		{"wrong result type", func() string { return "" }},
		{"variadic", func(ls ...testLogger) *widget { return nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCollection()
			AddTransient[*widget](c, tc.ctor)
			_, err := c.Build()
			if !errors.HasCode(err, errors.ErrCodeInvalidConstructor) {
				t.Errorf("expected INVALID_CONSTRUCTOR, got %v", err)
			}
		})
	}
}

func TestInvalidDescriptorRejectedAtBuild(t *testing.T) {
	c := NewCollection()
	c.Add(Descriptor{Type: typeFor[*widget](), Lifetime: Transient})
	if _, err := c.Build(); !errors.HasCode(err, errors.ErrCodeInvalidDescriptor) {
		t.Errorf("expected INVALID_DESCRIPTOR for empty strategy, got %v", err)
	}

	c = NewCollection()
	c.Add(Descriptor{
		Type:        typeFor[*widget](),
		Constructor: newWidget,
		Instance:    &widget{},
	})
	if _, err := c.Build(); !errors.HasCode(err, errors.ErrCodeInvalidDescriptor) {
		t.Errorf("expected INVALID_DESCRIPTOR for ambiguous strategy, got %v", err)
	}

	c = NewCollection()
	c.Add(Descriptor{Type: typeFor[testLogger](), Instance: "not a logger"})
	if _, err := c.Build(); !errors.HasCode(err, errors.ErrCodeInvalidDescriptor) {
		t.Errorf("expected INVALID_DESCRIPTOR for unassignable instance, got %v", err)
	}
}
