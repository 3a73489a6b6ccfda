package di

// Lifetime determines how resolved instances are cached and reused.
type Lifetime uint8

const (
	// Transient services are constructed on every resolution.
	Transient Lifetime = iota
	// Scoped services are constructed once per scope.
	Scoped
	// Singleton services are constructed once per container and stored
	// on the root provider regardless of which scope resolved them.
	Singleton
)

// String returns the lifetime name.
func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}
