package di

import (
	"context"

	apperr "github.com/skillsenselab/injectkit/errors"
	"github.com/skillsenselab/injectkit/resilience"
)

// Constructor builds one instance of T. The context carries the scope
// that triggered construction, so constructors resolve their own
// dependencies with Resolve against it.
type Constructor[T any] func(ctx context.Context) (T, error)

// Instance adapts an already-built value into a Constructor. Useful for
// registering configuration values or test doubles.
func Instance[T any](v T) Constructor[T] {
	return func(context.Context) (T, error) { return v, nil }
}

// Zero registers pointer services whose zero value is ready to use.
func Zero[T any]() Constructor[*T] {
	return func(context.Context) (*T, error) { return new(T), nil }
}

type registerOptions struct {
	name  string
	retry *resilience.RetryConfig
}

// RegisterOption tweaks a single registration.
type RegisterOption func(*registerOptions)

// WithName registers the service under a name, letting multiple
// implementations of the same type coexist. Resolve with ResolveNamed.
func WithName(name string) RegisterOption {
	return func(o *registerOptions) { o.name = name }
}

// WithRetry wraps the constructor with retry-and-backoff. Meant for
// constructors that reach external systems during startup.
func WithRetry(cfg resilience.RetryConfig) RegisterOption {
	return func(o *registerOptions) { o.retry = &cfg }
}

// RegisterSingleton registers a constructor whose first successful
// product is shared by every scope of the container.
func RegisterSingleton[T any](c *Container, ctor Constructor[T], opts ...RegisterOption) error {
	o := applyOptions(opts)
	return c.register(LifecycleSingleton, KeyFor[T](o.name), erase(o, ctor))
}

// RegisterScoped registers a constructor producing one instance per
// scope, disposed when the scope closes.
func RegisterScoped[T any](c *Container, ctor Constructor[T], opts ...RegisterOption) error {
	o := applyOptions(opts)
	return c.register(LifecycleScoped, KeyFor[T](o.name), erase(o, ctor))
}

// RegisterTransient registers a constructor invoked on every resolution.
// Transient instances are never cached or disposed by the engine.
func RegisterTransient[T any](c *Container, ctor Constructor[T], opts ...RegisterOption) error {
	o := applyOptions(opts)
	return c.register(LifecycleTransient, KeyFor[T](o.name), erase(o, ctor))
}

// Singleton registers on the default container.
func Singleton[T any](ctor Constructor[T], opts ...RegisterOption) error {
	return RegisterSingleton(Default(), ctor, opts...)
}

// Scoped registers on the default container.
func Scoped[T any](ctor Constructor[T], opts ...RegisterOption) error {
	return RegisterScoped(Default(), ctor, opts...)
}

// Transient registers on the default container.
func Transient[T any](ctor Constructor[T], opts ...RegisterOption) error {
	return RegisterTransient(Default(), ctor, opts...)
}

func applyOptions(opts []RegisterOption) registerOptions {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// erase wraps a typed constructor into the registry's type-erased form.
// The holder records the registration's static type, so interface
// registrations keep their interface identity regardless of the dynamic
// type the constructor returns.
func erase[T any](o registerOptions, ctor Constructor[T]) constructor {
	key := KeyFor[T](o.name)
	return func(ctx context.Context, s *Scope) (*Holder, error) {
		ctx = s.Enter(ctx)
		var (
			v   T
			err error
		)
		if o.retry != nil {
			v, err = resilience.Retry(ctx, *o.retry, func() (T, error) { return ctor(ctx) })
		} else {
			v, err = ctor(ctx)
		}
		if err != nil {
			if apperr.HasCode(err, apperr.CodeCircularDependency) {
				return nil, err
			}
			return nil, apperr.ConstructorFailure(key.String(), err)
		}
		return newHolder(v, key.Type), nil
	}
}
