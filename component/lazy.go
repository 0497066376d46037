package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/skillsenselab/injectkit/logger"
)

// Lazy defers expensive setup until Start (or the first explicit
// Initialize). It implements Component, so it can be registered directly
// even though its real work happens on first use.
type Lazy struct {
	name        string
	mu          sync.RWMutex
	initialized bool
	lastError   error
	initializer func(ctx context.Context) error
	healthCheck func(ctx context.Context) error
	closer      func() error
}

// NewLazy creates a lazy component around initializer.
func NewLazy(name string, initializer func(context.Context) error) *Lazy {
	return &Lazy{name: name, initializer: initializer}
}

// WithHealthCheck sets a custom health probe run after initialization.
func (l *Lazy) WithHealthCheck(fn func(context.Context) error) *Lazy {
	l.healthCheck = fn
	return l
}

// WithCloser sets the teardown run by Stop.
func (l *Lazy) WithCloser(fn func() error) *Lazy {
	l.closer = fn
	return l
}

func (l *Lazy) Name() string { return l.name }

// Initialize runs the initializer once; a failed attempt may be retried.
func (l *Lazy) Initialize(ctx context.Context) error {
	l.mu.RLock()
	if l.initialized && l.lastError == nil {
		l.mu.RUnlock()
		return nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.initialized && l.lastError == nil {
		return nil
	}
	if l.initializer == nil {
		return fmt.Errorf("no initializer for component %s", l.name)
	}

	if err := l.initializer(ctx); err != nil {
		l.lastError = err
		return fmt.Errorf("initialize %s: %w", l.name, err)
	}
	l.initialized = true
	l.lastError = nil
	logger.Debug("lazy component initialized", logger.Fields(logger.FieldComponent, l.name))
	return nil
}

// IsInitialized reports whether initialization has succeeded.
func (l *Lazy) IsInitialized() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.initialized && l.lastError == nil
}

// Start satisfies Component by running the initializer.
func (l *Lazy) Start(ctx context.Context) error {
	return l.Initialize(ctx)
}

// Stop runs the closer, if any, and marks the component uninitialized.
func (l *Lazy) Stop(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var err error
	if l.closer != nil && l.initialized {
		err = l.closer()
	}
	l.initialized = false
	return err
}

// Health reports unhealthy until initialized, then defers to the custom
// health check when one is set.
func (l *Lazy) Health(ctx context.Context) Health {
	if !l.IsInitialized() {
		return Health{Name: l.name, Status: StatusUnhealthy, Message: "not initialized"}
	}
	if l.healthCheck != nil {
		if err := l.healthCheck(ctx); err != nil {
			return Health{Name: l.name, Status: StatusDegraded, Message: err.Error()}
		}
	}
	return Health{Name: l.name, Status: StatusHealthy}
}
