package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed piece of an application. Components
// register into the container as Singleton implementations of this
// interface; the Host resolves and runs them.
type Component interface {
	// Name returns the unique name of the component.
	Name() string

	// Start initializes the component. Called in registration order.
	Start(ctx context.Context) error

	// Stop shuts the component down. Called in reverse start order.
	Stop(ctx context.Context) error

	// Health reports the component's current status.
	Health(ctx context.Context) Health
}
