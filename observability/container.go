package observability

import (
	"context"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/dikit/di"
)

// Container wraps a provider with tracing and metrics. Every resolution
// produces a span and a counter sample; scope creation and disposal are
// tracked as well. The wrapper leaves the provider's semantics alone.
type Container struct {
	provider *di.Provider
	tracer   trace.Tracer
	metrics  *ResolutionMetrics
}

// Instrument wraps the provider. A nil tracer falls back to the global
// one; a nil metrics disables metric recording.
func Instrument(p *di.Provider, tracer trace.Tracer, metrics *ResolutionMetrics) *Container {
	if tracer == nil {
		tracer = Tracer(defaultTracerName)
	}
	return &Container{provider: p, tracer: tracer, metrics: metrics}
}

// Provider returns the wrapped provider.
func (c *Container) Provider() *di.Provider {
	return c.provider
}

// GetService resolves typ, recording a span and metrics for the
// resolution.
func (c *Container) GetService(ctx context.Context, typ reflect.Type) (any, error) {
	ctx, span := c.tracer.Start(ctx, SpanResolve, trace.WithAttributes(
		attribute.String(AttrServiceType, typ.String()),
		attribute.String(AttrScopeID, c.provider.ID()),
	))
	defer span.End()

	start := time.Now()
	v, err := c.provider.GetService(typ)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	span.SetAttributes(attribute.String(AttrStatus, status))

	if c.metrics != nil {
		c.metrics.RecordResolution(ctx, typ.String(), status, time.Since(start))
	}
	return v, err
}

// CreateScope opens an instrumented child scope.
func (c *Container) CreateScope(ctx context.Context) *Container {
	_, span := c.tracer.Start(ctx, SpanCreateScope, trace.WithAttributes(
		attribute.String(AttrScopeID, c.provider.ID()),
	))
	defer span.End()

	scope := c.provider.CreateScope()
	if c.metrics != nil {
		c.metrics.RecordScopeOpened(ctx)
	}
	return &Container{provider: scope, tracer: c.tracer, metrics: c.metrics}
}

// Close disposes the wrapped provider, recording the disposal.
func (c *Container) Close(ctx context.Context) error {
	_, span := c.tracer.Start(ctx, SpanDispose, trace.WithAttributes(
		attribute.String(AttrScopeID, c.provider.ID()),
	))
	defer span.End()

	err := c.provider.Close()
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
	}
	span.SetAttributes(attribute.String(AttrStatus, status))

	if c.metrics != nil {
		c.metrics.RecordScopeClosed(ctx, status)
	}
	return err
}
