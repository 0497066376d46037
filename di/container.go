package di

import (
	"context"
	"errors"
	"sync"

	apperr "github.com/skillsenselab/injectkit/errors"
	"github.com/skillsenselab/injectkit/logger"
)

// Container owns the three per-lifecycle registries, the process-wide
// singleton cache, and the one-time initialization gate. Containers are
// independent: tests can build their own instead of sharing process-wide
// state.
type Container struct {
	singletons *registry
	scoped     *registry
	transients *registry

	// singletonCache maps Key to *Holder. Populated lazily on first
	// resolution; entries live until Reset.
	singletonCache sync.Map

	// regMu serializes registrations so the cross-category uniqueness
	// check and the snapshot swap are one atomic step. Registration is
	// rare; resolution never takes this lock.
	regMu sync.Mutex

	initMu      sync.Mutex
	initialized bool
	initErr     error

	observer Observer
	log      *logger.Logger
}

// Option configures a Container during creation.
type Option func(*Container)

// WithObserver installs an engine-event observer (metrics, tracing).
func WithObserver(o Observer) Option {
	return func(c *Container) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithLogger sets the logger used by the engine.
func WithLogger(l *logger.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		singletons: newRegistry(),
		scoped:     newRegistry(),
		transients: newRegistry(),
		observer:   noopObserver{},
		log:        logger.Get("di"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	defaultContainer     *Container
	defaultContainerOnce sync.Once
)

// Default returns the process-wide container, creating it on first use.
// The package-level registration and scope helpers target this container.
func Default() *Container {
	defaultContainerOnce.Do(func() {
		defaultContainer = New()
	})
	return defaultContainer
}

func (c *Container) registryFor(lc Lifecycle) *registry {
	switch lc {
	case LifecycleSingleton:
		return c.singletons
	case LifecycleScoped:
		return c.scoped
	default:
		return c.transients
	}
}

// register installs a type-erased constructor under key in the given
// lifecycle category. A key may exist in at most one category at a time.
func (c *Container) register(lc Lifecycle, key Key, ctor constructor) error {
	c.regMu.Lock()
	defer c.regMu.Unlock()

	for _, r := range []*registry{c.singletons, c.scoped, c.transients} {
		if r != c.registryFor(lc) && r.contains(key) {
			return apperr.AlreadyRegistered(key.String())
		}
	}
	if err := c.registryFor(lc).install(key, ctor); err != nil {
		return err
	}

	c.log.Debug("service registered", logger.Fields(
		logger.FieldService, key.String(),
		logger.FieldLifecycle, lc.String(),
	))
	return nil
}

// Registration is one named setup step run by Initialize. The bootstrap
// package collects declared registrations and feeds them here.
type Registration struct {
	Name string
	Fn   func(ctx context.Context, c *Container) error
}

// Initialize runs every registration exactly once per container, even
// under concurrent first calls: all callers block until the first has
// finished, after which calls are no-ops returning the recorded error.
func (c *Container) Initialize(ctx context.Context, regs ...Registration) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()
	if c.initialized {
		return c.initErr
	}
	for _, reg := range regs {
		if err := reg.Fn(ctx, c); err != nil {
			c.initErr = err
			c.initialized = true
			c.log.Error("registration failed", logger.ErrorFields(reg.Name, err))
			return err
		}
	}
	c.initialized = true
	c.log.Debug("container initialized", logger.Fields("registrations", len(regs)))
	return nil
}

// RegistrationInfo describes a registered service for introspection.
type RegistrationInfo struct {
	Key       Key
	Lifecycle Lifecycle
	Cached    bool
}

// Registrations returns info about every registered service.
func (c *Container) Registrations() []RegistrationInfo {
	var out []RegistrationInfo
	for lc, r := range map[Lifecycle]*registry{
		LifecycleSingleton: c.singletons,
		LifecycleScoped:    c.scoped,
		LifecycleTransient: c.transients,
	} {
		for _, k := range r.keys() {
			cached := false
			if lc == LifecycleSingleton {
				_, cached = c.singletonCache.Load(k)
			}
			out = append(out, RegistrationInfo{Key: k, Lifecycle: lc, Cached: cached})
		}
	}
	return out
}

// Shutdown disposes every cached singleton whose value implements
// Close() error and clears the cache. Intended for application teardown,
// after all scopes are closed; disposal errors are joined.
func (c *Container) Shutdown() error {
	var errs []error
	c.singletonCache.Range(func(k, v any) bool {
		if h, ok := v.(*Holder); ok {
			if err := h.dispose(); err != nil {
				errs = append(errs, err)
			}
		}
		c.singletonCache.Delete(k)
		return true
	})
	return errors.Join(errs...)
}

// Reset clears all registries, the singleton cache, and the
// initialization gate. It exists for test isolation only; production
// code never removes registrations.
func (c *Container) Reset() {
	c.regMu.Lock()
	c.singletons.reset()
	c.scoped.reset()
	c.transients.reset()
	c.singletonCache.Range(func(k, _ any) bool {
		c.singletonCache.Delete(k)
		return true
	})
	c.regMu.Unlock()

	c.initMu.Lock()
	c.initialized = false
	c.initErr = nil
	c.initMu.Unlock()
}

// ResetForTests clears the default container. See Container.Reset.
func ResetForTests() {
	Default().Reset()
}
