package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/injectkit/component"
	"github.com/skillsenselab/injectkit/di"
	"github.com/skillsenselab/injectkit/logger"
	"github.com/skillsenselab/injectkit/observability"
	"github.com/skillsenselab/injectkit/version"
)

// App manages a service's lifecycle around a dependency-injection
// container. The type parameter C is the config type; any struct
// embedding config.ServiceConfig satisfies the Config constraint.
//
// Startup phases: start components, run OnStart hooks, apply service
// registrations to the container, run configure callbacks, ready check,
// OnReady hooks. Shutdown reverses: OnStop hooks, stop components,
// dispose cached singletons.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Container  *di.Container
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	registrations   []di.Registration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates an application from a typed config. It applies config
// defaults, validates, initializes the logger, and builds the container
// with engine observability per the config's Engine section.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()
	if base.Version == "" {
		base.Version = version.Short()
	}

	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	if o.container != nil {
		app.Container = o.container
	} else {
		containerOpts := []di.Option{di.WithLogger(app.Logger)}
		if base.Engine.Tracing || base.Engine.Metrics {
			obs, err := observability.NewResolveObserver(observability.ObserverConfig{
				ServiceName: base.Name,
				Tracing:     base.Engine.Tracing,
				Metrics:     base.Engine.Metrics,
			})
			if err != nil {
				return nil, fmt.Errorf("engine observability: %w", err)
			}
			containerOpts = append(containerOpts, di.WithObserver(obs))
		}
		app.Container = di.New(containerOpts...)
	}

	app.Summary = NewSummary(base.Name, base.Version)
	return app, nil
}

// RegisterComponent adds a lifecycle component. Components start in
// registration order during startup.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// RegisterServices appends app-local registrations, applied after the
// package-level declarations during startup.
func (a *App[C]) RegisterServices(regs ...di.Registration) {
	a.registrations = append(a.registrations, regs...)
}

// OnConfigure registers a callback run after the container is
// initialized. Use it to wire business-layer setup that needs resolved
// services.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run executes the full lifecycle for long-running services: startup,
// block until a shutdown signal, graceful shutdown.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task with the full bootstrap lifecycle.
// Unlike Run it does not block on signals: the task runs to completion
// (or signal-driven cancellation) and the app shuts down.
//
// Use RunTask for CLI tools, batch jobs, and one-shot processes that
// want the same wiring as a long-running service.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("received signal, canceling task", logger.Fields(
				"signal", sig.String(),
			))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

// startup is the initialization sequence shared by Run and RunTask.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
	))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("component startup: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook: %w", err)
	}

	regs := append(Declared(), a.registrations...)
	if err := a.Container.Initialize(ctx, regs...); err != nil {
		return fmt.Errorf("service registration: %w", err)
	}

	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configure: %w", err)
		}
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields(
			logger.FieldError, err.Error(),
		))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()
	return nil
}

// DisplaySummary prints the startup summary, collecting infrastructure,
// routes, and health from the component registry and service
// registrations from the container.
func (a *App[C]) DisplaySummary() {
	a.Summary.Display(a.Components, a.Container)
}

// WaitForSignal blocks until an interrupt/term signal or context
// cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own
// lifecycle instead of Run.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

func (a *App[C]) stop() error {
	a.Logger.Info("shutting down application", logger.Fields(
		"timeout", a.gracefulTimeout.String(),
	))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook error", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("component shutdown errors", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}

	if err := a.Container.Shutdown(); err != nil {
		a.Logger.Error("singleton disposal errors", logger.Fields(logger.FieldError, err.Error()))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("application shutdown complete")
	return shutdownErr
}
