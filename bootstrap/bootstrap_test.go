package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/skillsenselab/injectkit/component"
	"github.com/skillsenselab/injectkit/config"
	"github.com/skillsenselab/injectkit/di"
)

type testConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
}

func newTestConfig(name string) *testConfig {
	cfg := &testConfig{}
	cfg.Name = name
	cfg.Environment = "production"
	cfg.Version = "0.1.0"
	return cfg
}

type testRepo struct {
	closed atomic.Bool
}

func (r *testRepo) Close() error {
	r.closed.Store(true)
	return nil
}

func TestNewAppValidatesConfig(t *testing.T) {
	_, err := NewApp(&testConfig{})
	if err == nil {
		t.Fatal("expected validation error for empty config")
	}
}

func TestNewAppDefaults(t *testing.T) {
	app, err := NewApp(newTestConfig("orders"))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if app.Name != "orders" || app.Version != "0.1.0" {
		t.Errorf("app identity = %s/%s", app.Name, app.Version)
	}
	if app.Container == nil || app.Components == nil || app.Logger == nil {
		t.Error("app missing container, registry, or logger")
	}
}

func TestDeclaredRegistrationsRunInOrder(t *testing.T) {
	ClearDeclarations()
	t.Cleanup(ClearDeclarations)

	var order []string
	Declare("first", func(ctx context.Context, c *di.Container) error {
		order = append(order, "first")
		return nil
	})
	Declare("second", func(ctx context.Context, c *di.Container) error {
		order = append(order, "second")
		return nil
	})

	app, err := NewApp(newTestConfig("orders"))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	err = app.RunTask(context.Background(), func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("declaration order = %v, want [first second]", order)
	}
}

func TestInitializeRunsDeclaredOnce(t *testing.T) {
	ClearDeclarations()
	t.Cleanup(ClearDeclarations)
	di.ResetForTests()
	t.Cleanup(di.ResetForTests)

	var runs atomic.Int32
	Declare("count", func(ctx context.Context, c *di.Container) error {
		runs.Add(1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := Initialize(context.Background()); err != nil {
				t.Errorf("Initialize: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := runs.Load(); got != 1 {
		t.Errorf("declared registration ran %d times, want 1", got)
	}
}

func TestRunTaskResolvesServices(t *testing.T) {
	ClearDeclarations()
	t.Cleanup(ClearDeclarations)

	app, err := NewApp(newTestConfig("orders"))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	app.RegisterServices(di.Registration{
		Name: "repo",
		Fn: func(ctx context.Context, c *di.Container) error {
			return di.RegisterSingleton(c, func(ctx context.Context) (*testRepo, error) {
				return &testRepo{}, nil
			})
		},
	})

	var repo *testRepo
	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		return app.Container.RunWithScope(ctx, func(ctx context.Context) error {
			h, err := di.Resolve[*testRepo](ctx)
			if err != nil {
				return err
			}
			repo = h.MustValue()
			return nil
		})
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if repo == nil {
		t.Fatal("service not resolved")
	}
	// App shutdown disposes cached singletons.
	if !repo.closed.Load() {
		t.Error("singleton not disposed on shutdown")
	}
}

func TestHookOrder(t *testing.T) {
	ClearDeclarations()
	t.Cleanup(ClearDeclarations)

	app, err := NewApp(newTestConfig("orders"))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	var order []string
	app.OnStart(func(ctx context.Context) error {
		order = append(order, "start")
		return nil
	})
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		order = append(order, "configure")
		return nil
	})
	app.OnReady(func(ctx context.Context) error {
		order = append(order, "ready")
		return nil
	})
	app.OnStop(func(ctx context.Context) error {
		order = append(order, "stop")
		return nil
	})

	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	want := []string{"start", "configure", "ready", "task", "stop"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestComponentLifecycleThroughApp(t *testing.T) {
	ClearDeclarations()
	t.Cleanup(ClearDeclarations)

	app, err := NewApp(newTestConfig("orders"))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	var started, stopped bool
	err = app.RegisterComponent(&component.Func{
		ComponentName: "db",
		OnStart: func(ctx context.Context) error {
			started = true
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopped = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("RegisterComponent: %v", err)
	}

	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		if !started {
			t.Error("component not started before task")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if !stopped {
		t.Error("component not stopped on shutdown")
	}
}

func TestStartupFailsOnComponentError(t *testing.T) {
	ClearDeclarations()
	t.Cleanup(ClearDeclarations)

	app, err := NewApp(newTestConfig("orders"))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	app.RegisterComponent(&component.Func{
		ComponentName: "broken",
		OnStart: func(ctx context.Context) error {
			return fmt.Errorf("listen failed")
		},
	})

	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		t.Error("task ran despite component failure")
		return nil
	})
	if err == nil {
		t.Fatal("expected startup failure")
	}
}

func TestStartupFailsOnRegistrationError(t *testing.T) {
	ClearDeclarations()
	t.Cleanup(ClearDeclarations)

	boom := errors.New("bad wiring")
	Declare("broken", func(ctx context.Context, c *di.Container) error {
		return boom
	})

	app, err := NewApp(newTestConfig("orders"))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		t.Error("task ran despite registration failure")
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped registration failure", err)
	}
}

func TestReadyCheckReportsUnhealthy(t *testing.T) {
	app, err := NewApp(newTestConfig("orders"))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	app.RegisterComponent(&component.Func{
		ComponentName: "cache",
		OnHealth: func(ctx context.Context) component.Health {
			return component.Health{Name: "cache", Status: component.StatusUnhealthy, Message: "timeout"}
		},
	})

	err = app.ReadyCheck(context.Background())
	if err == nil {
		t.Fatal("expected ready check failure")
	}
	if want := "cache=unhealthy(timeout)"; !strings.Contains(err.Error(), want) {
		t.Errorf("err = %q, want mention of %q", err.Error(), want)
	}
}
