package component

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/logger"
)

// Host resolves every registered Component from a container and drives
// its lifecycle. Components start in registration order and stop in
// reverse; closing the host also closes the provider, disposing
// container-owned instances.
type Host struct {
	provider    *di.Provider
	log         *logger.Logger
	stopTimeout time.Duration

	mu      sync.Mutex
	started []Component
}

// NewHost creates a host over the given provider.
func NewHost(p *di.Provider, log *logger.Logger) *Host {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Host{
		provider:    p,
		log:         log.WithComponent("host"),
		stopTimeout: 10 * time.Second,
	}
}

// Provider returns the underlying container provider.
func (h *Host) Provider() *di.Provider {
	return h.provider
}

// Start resolves all components and starts them in registration order.
// The first failure stops the sequence; components already started stay
// started so Stop can wind them down.
func (h *Host) Start(ctx context.Context) error {
	components, err := di.ResolveAll[Component](h.provider)
	if err != nil {
		return fmt.Errorf("resolving components: %w", err)
	}

	h.log.Info("starting components", logger.Fields("count", len(components)))

	for _, c := range components {
		h.log.Debug("starting component", logger.Fields("component", c.Name()))
		if err := c.Start(ctx); err != nil {
			h.log.Error("component start failed", logger.Fields("component", c.Name(), "error", err.Error()))
			return fmt.Errorf("starting %s: %w", c.Name(), err)
		}
		h.mu.Lock()
		h.started = append(h.started, c)
		h.mu.Unlock()
	}

	h.log.Info("all components started")
	return nil
}

// Stop stops started components in reverse order, then closes the
// provider. Stop errors are collected; every component gets its chance
// to shut down.
func (h *Host) Stop(ctx context.Context) error {
	h.mu.Lock()
	started := h.started
	h.started = nil
	h.mu.Unlock()

	var errs []error
	for i := len(started) - 1; i >= 0; i-- {
		c := started[i]
		stopCtx, cancel := context.WithTimeout(ctx, h.stopTimeout)
		if err := c.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("stopping %s: %w", c.Name(), err))
			h.log.Error("component stop failed", logger.Fields("component", c.Name(), "error", err.Error()))
		} else {
			h.log.Debug("component stopped", logger.Fields("component", c.Name()))
		}
		cancel()
	}

	if err := h.provider.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing provider: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	h.log.Info("all components stopped")
	return nil
}

// HealthAll reports health for every registered component.
func (h *Host) HealthAll(ctx context.Context) ([]Health, error) {
	components, err := di.ResolveAll[Component](h.provider)
	if err != nil {
		return nil, err
	}
	results := make([]Health, 0, len(components))
	for _, c := range components {
		results = append(results, c.Health(ctx))
	}
	return results, nil
}
