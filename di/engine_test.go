package di

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestResultsStableAcrossCompilation(t *testing.T) {
	p := buildScenario(t)
	scope := p.CreateScope()
	defer scope.Close()

	firstWidget := MustResolve[*widget](scope)
	firstLogger := MustResolve[testLogger](scope)
	firstCtx := MustResolve[*requestContext](scope)

	// Drive the accessors well past the compile threshold and give the
	// background compilation time to swap in.
	for i := 0; i < 50; i++ {
		MustResolve[*widget](scope)
	}
	time.Sleep(50 * time.Millisecond)

	lateWidget := MustResolve[*widget](scope)
	if lateWidget == firstWidget {
		t.Error("expected transient widgets to stay distinct after compilation")
	}
	if lateWidget.logger != firstLogger {
		t.Error("expected singleton identity preserved across compilation")
	}
	if lateWidget.rc != firstCtx {
		t.Error("expected scoped identity preserved across compilation")
	}
}

func TestCompilationDisabled(t *testing.T) {
	c := NewCollection()
	AddTransient[*consoleLogger](c, newConsoleLogger)
	p, err := c.BuildWithOptions(Options{Compilation: false})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		if MustResolve[*consoleLogger](p) == nil {
			t.Fatal("expected instance")
		}
	}
}

func TestCompileThresholdHonored(t *testing.T) {
	c := NewCollection()
	AddTransient[*consoleLogger](c, newConsoleLogger)
	p, err := c.BuildWithOptions(Options{Compilation: true, CompileThreshold: 5})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for i := 0; i < 20; i++ {
		MustResolve[*consoleLogger](p)
	}
	time.Sleep(50 * time.Millisecond)

	if MustResolve[*consoleLogger](p) == nil {
		t.Fatal("expected instance after compilation")
	}
}

func TestCompiledDisposalTracking(t *testing.T) {
	c := NewCollection()
	AddTransient[*closeRecorder](c, func() *closeRecorder { return &closeRecorder{} })
	p, _ := c.Build()

	var all []*closeRecorder
	for i := 0; i < 30; i++ {
		all = append(all, MustResolve[*closeRecorder](p))
	}
	time.Sleep(50 * time.Millisecond)
	all = append(all, MustResolve[*closeRecorder](p))

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	for i, r := range all {
		if r.closed != 1 {
			t.Fatalf("instance %d closed %d times, expected 1", i, r.closed)
		}
	}
}

func TestCompiledCycleStillFails(t *testing.T) {
	// Cyclic plans never realize an accessor, so repeated attempts keep
	// failing identically whether or not other plans have compiled.
	p := buildCycle(t)
	for i := 0; i < 10; i++ {
		if _, err := p.GetService(typeFor[*cycleA]()); err == nil {
			t.Fatal("expected cycle error on every attempt")
		}
	}
}

func TestConcurrentSingletonConstructedOnce(t *testing.T) {
	var constructions atomic.Int32
	c := NewCollection()
	AddFactory[testLogger](c, Singleton, func(p *Provider) (testLogger, error) {
		constructions.Add(1)
		time.Sleep(time.Millisecond)
		return newConsoleLogger(), nil
	})
	p, _ := c.Build()

	var wg sync.WaitGroup
	results := make([]testLogger, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = MustResolve[testLogger](p)
		}(i)
	}
	wg.Wait()

	if got := constructions.Load(); got != 1 {
		t.Errorf("expected exactly one construction, got %d", got)
	}
	for _, r := range results[1:] {
		if r != results[0] {
			t.Fatal("expected all goroutines to observe the same singleton")
		}
	}
}

func TestConcurrentScopedIsolation(t *testing.T) {
	c := NewCollection()
	AddScoped[*consoleLogger](c, newConsoleLogger)
	p, _ := c.Build()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scope := p.CreateScope()
			defer scope.Close()
			a := MustResolve[*consoleLogger](scope)
			b := MustResolve[*consoleLogger](scope)
			if a != b {
				t.Error("expected stable scoped instance within a goroutine's scope")
			}
		}()
	}
	wg.Wait()
}

func TestConcurrentPlanCompilation(t *testing.T) {
	// Two plans driven past the compile threshold from parallel
	// goroutines compile on concurrent background goroutines; both
	// compilations log through the shared global logger and must not
	// trip the race detector.
	c := NewCollection()
	AddTransient[*consoleLogger](c, newConsoleLogger)
	AddTransient[*session](c, newSession)
	p, err := c.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	s1 := p.CreateScope()
	defer s1.Close()
	s2 := p.CreateScope()
	defer s2.Close()

	var wg sync.WaitGroup
	for _, scope := range []*Provider{s1, s2} {
		scope := scope
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 30; i++ {
				if MustResolve[*consoleLogger](scope) == nil {
					t.Error("expected instance")
					return
				}
				if MustResolve[*session](scope) == nil {
					t.Error("expected instance")
					return
				}
			}
		}()
	}
	wg.Wait()
	time.Sleep(50 * time.Millisecond)

	a := MustResolve[*consoleLogger](s1)
	b := MustResolve[*consoleLogger](s1)
	if a == b {
		t.Error("expected transients to stay distinct after concurrent compilation")
	}
}

type session struct{ n int }

func newSession() *session { return &session{} }

func TestConcurrentResolutionDuringSwap(t *testing.T) {
	// Hammer one accessor from many goroutines while compilation swaps
	// it out; every caller must observe correct lifetime semantics.
	c := NewCollection()
	AddSingleton[testLogger](c, newConsoleLogger)
	AddTransient[*widget](c, newWidget)
	AddScoped[*requestContext](c, newRequestContext)
	p, _ := c.Build()
	scope := p.CreateScope()
	defer scope.Close()

	want := MustResolve[testLogger](scope)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				w := MustResolve[*widget](scope)
				if w.logger != want {
					t.Error("observed wrong singleton during accessor swap")
					return
				}
			}
		}()
	}
	wg.Wait()
}
