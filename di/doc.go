// Package di implements the injectkit resolution engine: a concurrent
// dependency-injection container with three instance lifecycles.
//
// Services are registered as constructors under a (type, name) key in one
// of three lifecycle categories:
//
//   - Singleton: constructed once, cached for the life of the process.
//   - Scoped: constructed once per unit-of-work Scope, disposed with it.
//   - Transient: constructed on every resolution, never cached.
//
// Resolution happens inside a Scope, which is carried on a
// context.Context:
//
//	di.RegisterSingleton(c, func(ctx context.Context) (*Config, error) {
//	    return LoadConfig()
//	})
//
//	err := c.RunWithScope(ctx, func(ctx context.Context) error {
//	    cfg, err := di.Resolve[*Config](ctx)
//	    ...
//	})
//
// Constructors receive a context carrying the active Scope and may
// resolve their own dependencies recursively; self-referential chains are detected and
// reported as circular-dependency errors instead of recursing forever.
// Registry reads on the resolution path are lock-free; registration uses
// copy-on-write snapshots and is expected to happen at startup.
package di
