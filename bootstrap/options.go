package bootstrap

import (
	"time"

	"github.com/skillsenselab/injectkit/di"
	"github.com/skillsenselab/injectkit/logger"
)

// Option configures the App during creation. Options are non-generic so
// they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	container       *di.Container
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger. If not set, the logger is initialized
// from the config's Logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout bounds the shutdown sequence.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithContainer supplies a pre-built container, overriding the one the
// App would construct from the config's Engine section.
func WithContainer(c *di.Container) Option {
	return func(o *appOptions) {
		o.container = c
	}
}
