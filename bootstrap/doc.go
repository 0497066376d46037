// Package bootstrap orchestrates application lifecycle for injectkit
// services.
//
// It ties together typed configuration loading, the dependency-injection
// container, component startup/shutdown, and lifecycle hooks.
//
// # Quick Start
//
//	bootstrap.Declare("database", func(ctx context.Context, c *di.Container) error {
//	    return di.RegisterSingleton(c, db.NewPool)
//	})
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Service registrations are declared explicitly and run in declaration
// order during startup, so wiring stays visible and deterministic
// instead of hiding in package side effects.
package bootstrap
