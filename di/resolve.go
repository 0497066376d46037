package di

import (
	"context"
	"time"

	apperr "github.com/skillsenselab/injectkit/errors"
	"github.com/skillsenselab/injectkit/logger"
)

// Resolve looks up an unnamed service of type T through the scope
// carried by ctx. Lookup order: scope cache, scoped registry, singleton
// cache, singleton registry, transient registry.
func Resolve[T any](ctx context.Context) (*Handle[T], error) {
	return ResolveNamed[T](ctx, "")
}

// ResolveNamed looks up the service of type T registered under name.
func ResolveNamed[T any](ctx context.Context, name string) (*Handle[T], error) {
	s, err := FromContext(ctx)
	if err != nil {
		return nil, err
	}
	h, _, err := s.resolve(ctx, KeyFor[T](name))
	if err != nil {
		return nil, err
	}
	return handleFor[T](h)
}

// MustResolve is Resolve but panics on failure. Intended for wiring code
// that runs at startup, where a missing service is a programming error.
func MustResolve[T any](ctx context.Context) *Handle[T] {
	h, err := Resolve[T](ctx)
	if err != nil {
		panic(err)
	}
	return h
}

// TryResolve is Resolve but reports absence as a boolean, swallowing
// only ServiceNotFound. Other failures still surface as false here, so
// callers that need the distinction should use Resolve.
func TryResolve[T any](ctx context.Context) (*Handle[T], bool) {
	h, err := Resolve[T](ctx)
	return h, err == nil
}

// resolve walks the lookup chain for key. The returned lifecycle tells
// observers which category served the request; lifecycleNone means the
// key was not found or resolution failed before a category was chosen.
func (s *Scope) resolve(ctx context.Context, key Key) (*Holder, Lifecycle, error) {
	if s.closed.Load() {
		return nil, lifecycleNone, apperr.NoActiveScope().WithDetail("scope_id", s.id)
	}
	if err := ctx.Err(); err != nil {
		return nil, lifecycleNone, err
	}

	ctx, st := withStack(ctx)
	if err := st.enter(key); err != nil {
		s.container.log.Error("circular dependency", logger.Fields(
			logger.FieldService, key.String(),
			"depth", st.depth(),
		))
		return nil, lifecycleNone, err
	}
	defer st.exit(key)

	ctx = s.container.observer.ResolveStart(ctx, key)
	start := time.Now()
	h, lc, err := s.lookup(ctx, key)
	s.container.observer.ResolveEnd(ctx, key, lc, err, time.Since(start))
	return h, lc, err
}

func (s *Scope) lookup(ctx context.Context, key Key) (*Holder, Lifecycle, error) {
	c := s.container

	// Scoped: cache hit first, then construct and race into the cache.
	// Under a construction race every loser's instance is discarded in
	// favor of the first stored one, so callers always see one instance
	// per scope.
	if v, ok := s.instances.Load(key); ok {
		return v.(*Holder), LifecycleScoped, nil
	}
	if ctor, ok := c.scoped.lookup(key); ok {
		h, err := ctor(ctx, s)
		if err != nil {
			return nil, LifecycleScoped, err
		}
		actual, _ := s.instances.LoadOrStore(key, h)
		ah := actual.(*Holder)
		// A construction racing Close may store after the disposal pass
		// already ran. Re-checking the flag after the store closes that
		// window: the instance is torn down here instead and the resolve
		// fails, so nothing outlives its scope.
		if s.closed.Load() {
			if v, loaded := s.instances.LoadAndDelete(key); loaded {
				if derr := v.(*Holder).dispose(); derr != nil {
					c.log.Warn("scoped instance close failed", logger.Fields(
						logger.FieldScopeID, s.id,
						logger.FieldService, key.String(),
						logger.FieldError, derr.Error(),
					))
				}
			}
			return nil, LifecycleScoped, apperr.NoActiveScope().WithDetail("scope_id", s.id)
		}
		return ah, LifecycleScoped, nil
	}

	// Singleton: same shape against the container-wide cache.
	if v, ok := c.singletonCache.Load(key); ok {
		return v.(*Holder), LifecycleSingleton, nil
	}
	if ctor, ok := c.singletons.lookup(key); ok {
		h, err := ctor(ctx, s)
		if err != nil {
			return nil, LifecycleSingleton, err
		}
		actual, _ := c.singletonCache.LoadOrStore(key, h)
		return actual.(*Holder), LifecycleSingleton, nil
	}

	// Transient: fresh instance per call, never cached.
	if ctor, ok := c.transients.lookup(key); ok {
		h, err := ctor(ctx, s)
		if err != nil {
			return nil, LifecycleTransient, err
		}
		return h, LifecycleTransient, nil
	}

	return nil, lifecycleNone, apperr.ServiceNotFound(key.String())
}
