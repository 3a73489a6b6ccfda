package di

// Options tunes the execution engine of a provider.
type Options struct {
	// Compilation enables background compilation of resolution plans into
	// specialized closures after repeated use.
	Compilation bool
	// CompileThreshold is the invocation count at which a plan is
	// scheduled for compilation.
	CompileThreshold uint32
}

// DefaultOptions returns the standard engine tuning: compilation enabled
// after the second invocation of a plan.
func DefaultOptions() Options {
	return Options{
		Compilation:      true,
		CompileThreshold: 2,
	}
}
