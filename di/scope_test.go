package di

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	apperr "github.com/skillsenselab/injectkit/errors"
)

type closableConn struct {
	closes atomic.Int32
	fail   error
}

func (c *closableConn) Close() error {
	c.closes.Add(1)
	return c.fail
}

func TestScopeCloseDisposesInstancesOnce(t *testing.T) {
	c := New()
	if err := RegisterScoped(c, func(ctx context.Context) (*closableConn, error) {
		return &closableConn{}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	s := c.NewScope()
	ctx := s.Enter(context.Background())
	conn := MustResolve[*closableConn](ctx).MustValue()

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if got := conn.closes.Load(); got != 1 {
		t.Errorf("Close called %d times, want 1", got)
	}
}

func TestScopeCloseConcurrent(t *testing.T) {
	c := New()
	if err := RegisterScoped(c, func(ctx context.Context) (*closableConn, error) {
		return &closableConn{}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	s := c.NewScope()
	ctx := s.Enter(context.Background())
	conn := MustResolve[*closableConn](ctx).MustValue()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Close()
		}()
	}
	wg.Wait()
	if got := conn.closes.Load(); got != 1 {
		t.Errorf("Close called %d times under concurrent scope close, want 1", got)
	}
}

func TestScopeCloseJoinsDisposalErrors(t *testing.T) {
	c := New()
	failure := errors.New("flush failed")
	if err := RegisterScoped(c, func(ctx context.Context) (*closableConn, error) {
		return &closableConn{fail: failure}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	s := c.NewScope()
	ctx := s.Enter(context.Background())
	MustResolve[*closableConn](ctx)

	if err := s.Close(); !errors.Is(err, failure) {
		t.Fatalf("close err = %v, want wrapped %v", err, failure)
	}
}

func TestScopeResolveAfterCloseFails(t *testing.T) {
	c := New()
	if err := RegisterScoped(c, func(ctx context.Context) (*closableConn, error) {
		return &closableConn{}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	s := c.NewScope()
	ctx := s.Enter(context.Background())
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := Resolve[*closableConn](ctx)
	if !apperr.HasCode(err, apperr.CodeNoActiveScope) {
		t.Fatalf("err = %v, want code %s", err, apperr.CodeNoActiveScope)
	}
}

// A construction still in flight when the scope closes must not hand
// out a live instance: the late store is torn down and the resolve
// fails, and the instance's Close runs exactly once.
func TestScopeCloseCatchesRacingConstruction(t *testing.T) {
	c := New()
	conn := &closableConn{}
	entered := make(chan struct{})
	release := make(chan struct{})
	if err := RegisterScoped(c, func(ctx context.Context) (*closableConn, error) {
		close(entered)
		<-release
		return conn, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	s := c.NewScope()
	ctx := s.Enter(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := Resolve[*closableConn](ctx)
		done <- err
	}()

	<-entered
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	close(release)

	if err := <-done; !apperr.HasCode(err, apperr.CodeNoActiveScope) {
		t.Fatalf("err = %v, want code %s", err, apperr.CodeNoActiveScope)
	}
	if got := conn.closes.Load(); got != 1 {
		t.Errorf("Close called %d times, want 1", got)
	}
}

func TestScopeCloseEmptiesCache(t *testing.T) {
	c := New()
	if err := RegisterScoped(c, func(ctx context.Context) (*closableConn, error) {
		return &closableConn{}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	s := c.NewScope()
	ctx := s.Enter(context.Background())
	MustResolve[*closableConn](ctx)

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	remaining := 0
	s.instances.Range(func(_, _ any) bool {
		remaining++
		return true
	})
	if remaining != 0 {
		t.Errorf("scoped cache holds %d entries after close, want 0", remaining)
	}
}

func TestScopeCloseLeavesSingletonsAlone(t *testing.T) {
	c := New()
	if err := RegisterSingleton(c, func(ctx context.Context) (*closableConn, error) {
		return &closableConn{}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	var conn *closableConn
	inScope(t, c, func(ctx context.Context) {
		conn = MustResolve[*closableConn](ctx).MustValue()
	})
	if got := conn.closes.Load(); got != 0 {
		t.Errorf("singleton closed %d times by scope teardown, want 0", got)
	}

	inScope(t, c, func(ctx context.Context) {
		again := MustResolve[*closableConn](ctx).MustValue()
		if again != conn {
			t.Error("singleton replaced after scope close")
		}
	})
}

func TestScopeIDsUnique(t *testing.T) {
	c := New()
	a, b := c.NewScope(), c.NewScope()
	defer a.Close()
	defer b.Close()
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("scope IDs not unique: %q vs %q", a.ID(), b.ID())
	}
}

func TestRunWithScopeJoinsBodyAndCloseErrors(t *testing.T) {
	c := New()
	disposeErr := errors.New("dispose")
	bodyErr := errors.New("body")
	if err := RegisterScoped(c, func(ctx context.Context) (*closableConn, error) {
		return &closableConn{fail: disposeErr}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := c.RunWithScope(context.Background(), func(ctx context.Context) error {
		MustResolve[*closableConn](ctx)
		return bodyErr
	})
	if !errors.Is(err, bodyErr) || !errors.Is(err, disposeErr) {
		t.Fatalf("err = %v, want both body and dispose errors", err)
	}
}

func TestFromContextMissing(t *testing.T) {
	_, err := FromContext(context.Background())
	if !apperr.HasCode(err, apperr.CodeNoActiveScope) {
		t.Fatalf("err = %v, want code %s", err, apperr.CodeNoActiveScope)
	}
}
