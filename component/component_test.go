package component

import (
	"context"
	"fmt"
	"testing"
)

type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&mockComponent{name: "db"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&mockComponent{name: "db"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "db"})

	if got := r.Get("db"); got == nil || got.Name() != "db" {
		t.Errorf("Get(db) = %v", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}
}

func TestStartAllOrder(t *testing.T) {
	r := NewRegistry()
	var order []string
	r.Register(&mockComponent{name: "db", startOrder: &order})
	r.Register(&mockComponent{name: "server", startOrder: &order})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if len(order) != 2 || order[0] != "db" || order[1] != "server" {
		t.Errorf("start order = %v, want [db server]", order)
	}
}

func TestStartAllStopsAtFirstFailure(t *testing.T) {
	r := NewRegistry()
	var order []string
	r.Register(&mockComponent{name: "db", startErr: fmt.Errorf("connection refused")})
	r.Register(&mockComponent{name: "server", startOrder: &order})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected StartAll error")
	}
	if len(order) != 0 {
		t.Errorf("later components started after failure: %v", order)
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := NewRegistry()
	var order []string
	r.Register(&mockComponent{name: "db", stopOrder: &order})
	r.Register(&mockComponent{name: "cache", stopOrder: &order})
	r.Register(&mockComponent{name: "server", stopOrder: &order})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if len(order) != 3 || order[0] != "server" || order[2] != "db" {
		t.Errorf("stop order = %v, want [server cache db]", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := NewRegistry()
	var order []string
	r.Register(&mockComponent{name: "db", stopOrder: &order})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("unstarted component stopped: %v", order)
	}
}

func TestStopAllCollectsErrors(t *testing.T) {
	r := NewRegistry()
	var order []string
	r.Register(&mockComponent{name: "db", stopOrder: &order})
	r.Register(&mockComponent{name: "cache", stopErr: fmt.Errorf("flush failed")})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected StopAll error")
	}
	// The failure in cache must not prevent db from stopping.
	if len(order) != 1 || order[0] != "db" {
		t.Errorf("stop order = %v, want [db]", order)
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "db", health: Health{Name: "db", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "cache", health: Health{Name: "cache", Status: StatusUnhealthy, Message: "timeout"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("len(HealthAll) = %d, want 2", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusUnhealthy {
		t.Errorf("health = %v", results)
	}
}

func TestLazyLifecycle(t *testing.T) {
	initCount := 0
	closed := false
	lz := NewLazy("lazy-db", func(ctx context.Context) error {
		initCount++
		return nil
	}).WithCloser(func() error {
		closed = true
		return nil
	})

	if lz.IsInitialized() {
		t.Error("initialized before Start")
	}
	if h := lz.Health(context.Background()); h.Status != StatusUnhealthy {
		t.Errorf("pre-start health = %s, want unhealthy", h.Status)
	}

	if err := lz.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := lz.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if initCount != 1 {
		t.Errorf("initializer ran %d times, want 1", initCount)
	}
	if h := lz.Health(context.Background()); h.Status != StatusHealthy {
		t.Errorf("post-start health = %s", h.Status)
	}

	if err := lz.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !closed {
		t.Error("closer not called")
	}
	if lz.IsInitialized() {
		t.Error("still initialized after Stop")
	}
}

func TestLazyFailedInitRetries(t *testing.T) {
	attempts := 0
	lz := NewLazy("flaky", func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return fmt.Errorf("not ready")
		}
		return nil
	})

	if err := lz.Initialize(context.Background()); err == nil {
		t.Fatal("expected first Initialize to fail")
	}
	if err := lz.Initialize(context.Background()); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestLazyCustomHealthCheck(t *testing.T) {
	lz := NewLazy("svc", func(ctx context.Context) error { return nil }).
		WithHealthCheck(func(ctx context.Context) error {
			return fmt.Errorf("replica lag")
		})
	lz.Start(context.Background())

	h := lz.Health(context.Background())
	if h.Status != StatusDegraded || h.Message != "replica lag" {
		t.Errorf("health = %+v, want degraded with message", h)
	}
}

func TestFuncComponentDefaults(t *testing.T) {
	f := &Func{ComponentName: "noop"}
	if err := f.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := f.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if h := f.Health(context.Background()); h.Status != StatusHealthy {
		t.Errorf("health = %s, want healthy", h.Status)
	}
}
