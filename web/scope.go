// Package web integrates the container with gin. ScopeMiddleware opens
// one container scope per HTTP request and disposes it when the request
// finishes, so Scoped registrations behave as per-request instances.
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/logger"
)

const (
	// ScopeKey is the gin context key under which the request scope is
	// stored.
	ScopeKey = "dikit.scope"

	// RequestIDHeader carries the request id on responses.
	RequestIDHeader = "X-Request-ID"
)

// ScopeMiddleware returns a gin middleware that creates a child scope
// from root for every request, stores it on the gin context, and closes
// it after the handler chain completes. Instances resolved as Scoped
// during the request are disposed at that point.
func ScopeMiddleware(root *di.Provider, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent("web")

	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		scope := root.CreateScope()
		c.Set(ScopeKey, scope)

		c.Next()

		if err := scope.Close(); err != nil {
			log.Error("request scope disposal failed", logger.Fields(
				logger.FieldRequestID, requestID,
				logger.FieldScopeID, scope.ID(),
				"error", err.Error(),
			))
		}
	}
}

// FromContext returns the request's container scope. It panics if the
// middleware is not installed; handlers relying on the scope cannot do
// anything sensible without it.
func FromContext(c *gin.Context) *di.Provider {
	v, ok := c.Get(ScopeKey)
	if !ok {
		panic("web: scope middleware not installed")
	}
	return v.(*di.Provider)
}

// Resolve resolves T from the request's scope and aborts the request
// with 500 when resolution fails. Returns false on failure.
func Resolve[T any](c *gin.Context) (T, bool) {
	v, err := di.Resolve[T](FromContext(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		var zero T
		return zero, false
	}
	return v, true
}
