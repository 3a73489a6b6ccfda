package component

import (
	"context"
	"sync"
)

// FuncComponent adapts plain functions into a Component. Useful for
// registering lifecycle hooks without defining a type:
//
//	component.New("cache-warmer").
//	    OnStart(warmCache).
//	    OnStop(flushCache)
type FuncComponent struct {
	name    string
	start   func(ctx context.Context) error
	stop    func(ctx context.Context) error
	health  func(ctx context.Context) error
	mu      sync.Mutex
	running bool
}

// New creates a named component whose lifecycle hooks are no-ops until
// set.
func New(name string) *FuncComponent {
	return &FuncComponent{name: name}
}

// OnStart sets the start hook.
func (f *FuncComponent) OnStart(fn func(ctx context.Context) error) *FuncComponent {
	f.start = fn
	return f
}

// OnStop sets the stop hook.
func (f *FuncComponent) OnStop(fn func(ctx context.Context) error) *FuncComponent {
	f.stop = fn
	return f
}

// WithHealth sets a health probe. A nil probe reports healthy whenever
// the component is running.
func (f *FuncComponent) WithHealth(fn func(ctx context.Context) error) *FuncComponent {
	f.health = fn
	return f
}

func (f *FuncComponent) Name() string { return f.name }

func (f *FuncComponent) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return nil
	}
	if f.start != nil {
		if err := f.start(ctx); err != nil {
			return err
		}
	}
	f.running = true
	return nil
}

func (f *FuncComponent) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return nil
	}
	f.running = false
	if f.stop != nil {
		return f.stop(ctx)
	}
	return nil
}

func (f *FuncComponent) Health(ctx context.Context) Health {
	f.mu.Lock()
	running := f.running
	f.mu.Unlock()

	h := Health{Name: f.name, Status: StatusHealthy}
	if !running {
		h.Status = StatusUnhealthy
		h.Message = "not started"
		return h
	}
	if f.health != nil {
		if err := f.health(ctx); err != nil {
			h.Status = StatusUnhealthy
			h.Message = err.Error()
		}
	}
	return h
}
