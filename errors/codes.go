package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registration errors
const (
	// ErrCodeInvalidDescriptor indicates a malformed service descriptor.
	ErrCodeInvalidDescriptor ErrorCode = "INVALID_DESCRIPTOR"
	// ErrCodeInvalidConstructor indicates a constructor with an unsupported shape.
	ErrCodeInvalidConstructor ErrorCode = "INVALID_CONSTRUCTOR"
)

// Resolution errors
const (
	// ErrCodeCircularDependency indicates a cycle in the dependency graph.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	// ErrCodeNotRegistered indicates a requested service has no registration.
	ErrCodeNotRegistered ErrorCode = "NOT_REGISTERED"
	// ErrCodeDependencyNotRegistered indicates a constructor parameter has no registration.
	ErrCodeDependencyNotRegistered ErrorCode = "DEPENDENCY_NOT_REGISTERED"
	// ErrCodeTypeMismatch indicates a resolved instance has an unexpected type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Lifecycle errors
const (
	// ErrCodeProviderDisposed indicates an operation on a disposed provider.
	ErrCodeProviderDisposed ErrorCode = "PROVIDER_DISPOSED"
	// ErrCodeDisposalFailed indicates one or more instances failed to close.
	ErrCodeDisposalFailed ErrorCode = "DISPOSAL_FAILED"
)

// Configuration errors
const (
	// ErrCodeConfigInvalid indicates invalid kit configuration.
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
)
