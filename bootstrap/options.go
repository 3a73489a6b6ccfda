package bootstrap

import (
	"time"

	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/logger"
)

// Option configures the App during creation. Options are non-generic so
// they work with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	engineOpts      *di.Options
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger. If not set, the logger is
// initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithEngineOptions overrides the container engine options derived from
// the config's Container settings.
func WithEngineOptions(opts di.Options) Option {
	return func(o *appOptions) {
		o.engineOpts = &opts
	}
}
