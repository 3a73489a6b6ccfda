// Package errors provides unified error handling for the dikit container.
// It implements structured error types with machine-readable codes and
// contextual details, so callers can distinguish registration mistakes,
// resolution failures, and lifecycle misuse programmatically.
package errors

import (
	"fmt"
	"strings"
)

// AppError is the unified dikit error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code, which makes
// errors.Is work against code-only sentinel values.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// HasCode reports whether err is (or wraps) an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// --- Common Error Constructors ---

// CircularDependency creates an AppError for a dependency cycle. The path
// lists the type names on the resolution stack ending at the repeated type.
func CircularDependency(typeName string, path []string) *AppError {
	msg := fmt.Sprintf("circular dependency detected for type %s", typeName)
	if len(path) > 0 {
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(path, " -> "))
	}
	return &AppError{
		Code: ErrCodeCircularDependency, Message: msg,
		Details: map[string]any{"type": typeName},
	}
}

// NotRegistered creates an AppError for a type with no registration.
func NotRegistered(typeName string) *AppError {
	return &AppError{
		Code: ErrCodeNotRegistered, Message: fmt.Sprintf("no registration for type %s", typeName),
		Details: map[string]any{"type": typeName},
	}
}

// DependencyNotRegistered creates an AppError for a constructor parameter
// that cannot be satisfied from the registry.
func DependencyNotRegistered(paramType, serviceType string) *AppError {
	return &AppError{
		Code:    ErrCodeDependencyNotRegistered,
		Message: fmt.Sprintf("unable to resolve dependency %s for service %s", paramType, serviceType),
		Details: map[string]any{"parameter": paramType, "service": serviceType},
	}
}

// InvalidDescriptor creates an AppError for a malformed service descriptor.
func InvalidDescriptor(typeName, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidDescriptor, Message: fmt.Sprintf("invalid descriptor for %s: %s", typeName, reason),
		Details: map[string]any{"type": typeName},
	}
}

// InvalidConstructor creates an AppError for a constructor with an
// unsupported shape.
func InvalidConstructor(typeName, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConstructor, Message: fmt.Sprintf("invalid constructor for %s: %s", typeName, reason),
		Details: map[string]any{"type": typeName},
	}
}

// TypeMismatch creates an AppError for an instance that does not satisfy
// the requested type.
func TypeMismatch(typeName, actual string) *AppError {
	return &AppError{
		Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("service %s resolved to incompatible type %s", typeName, actual),
		Details: map[string]any{"type": typeName, "actual": actual},
	}
}

// Disposed creates an AppError for an operation on a disposed provider.
func Disposed() *AppError {
	return &AppError{
		Code: ErrCodeProviderDisposed, Message: "provider has been disposed",
	}
}

// DisposalFailed creates an AppError aggregating instance close failures.
func DisposalFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeDisposalFailed, Message: "one or more instances failed to close",
		Cause: cause,
	}
}

// ConfigInvalid creates an AppError for invalid kit configuration.
func ConfigInvalid(reason string) *AppError {
	return &AppError{
		Code: ErrCodeConfigInvalid, Message: reason,
	}
}
