package di

import (
	"context"
	"sync"
	"testing"

	apperr "github.com/skillsenselab/injectkit/errors"
)

func TestHandleTypeMismatch(t *testing.T) {
	h := newHolder(&database{}, TypeFor[*database]())
	if _, err := handleFor[*cache](h); !apperr.HasCode(err, apperr.CodeTypeMismatch) {
		t.Fatalf("err = %v, want code %s", err, apperr.CodeTypeMismatch)
	}
	if _, err := handleFor[*database](h); err != nil {
		t.Fatalf("matching type: %v", err)
	}
}

func TestHandleUpdateVisibleThroughAllHandles(t *testing.T) {
	c := New()
	if err := RegisterSingleton(c, Instance(&cache{hits: 1})); err != nil {
		t.Fatalf("register: %v", err)
	}

	inScope(t, c, func(ctx context.Context) {
		a := MustResolve[*cache](ctx)
		b := MustResolve[*cache](ctx)
		if !a.Same(b) {
			t.Fatal("handles for one singleton do not share the instance")
		}
		if err := a.Update(func(v *cache) *cache {
			v.hits++
			return v
		}); err != nil {
			t.Fatalf("update: %v", err)
		}
		if got := b.MustValue().hits; got != 2 {
			t.Errorf("hits via second handle = %d, want 2", got)
		}
	})
}

func TestHandleConcurrentUpdates(t *testing.T) {
	h := newHolder(cache{}, TypeFor[cache]())
	handle, err := handleFor[cache](h)
	if err != nil {
		t.Fatalf("handleFor: %v", err)
	}

	const goroutines, perGoroutine = 8, 100
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				_ = handle.Update(func(v cache) cache {
					v.hits++
					return v
				})
			}
		}()
	}
	wg.Wait()

	v, err := handle.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v.hits != goroutines*perGoroutine {
		t.Errorf("hits = %d, want %d", v.hits, goroutines*perGoroutine)
	}
}

func TestHolderPanicPoisons(t *testing.T) {
	h := newHolder(&cache{}, TypeFor[*cache]())
	handle, err := handleFor[*cache](h)
	if err != nil {
		t.Fatalf("handleFor: %v", err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic in Update did not propagate")
			}
		}()
		_ = handle.Update(func(v *cache) *cache {
			panic("mutation gone wrong")
		})
	}()

	if _, err := handle.Value(); !apperr.HasCode(err, apperr.CodeLockCorrupted) {
		t.Fatalf("post-panic read err = %v, want code %s", err, apperr.CodeLockCorrupted)
	}
	if err := handle.Update(func(v *cache) *cache { return v }); !apperr.HasCode(err, apperr.CodeLockCorrupted) {
		t.Fatalf("post-panic write err = %v, want code %s", err, apperr.CodeLockCorrupted)
	}
	if err := h.dispose(); !apperr.HasCode(err, apperr.CodeLockCorrupted) {
		t.Fatalf("post-panic dispose err = %v, want code %s", err, apperr.CodeLockCorrupted)
	}
}

func TestHandleViewReadsUnderLock(t *testing.T) {
	h := newHolder(&cache{hits: 7}, TypeFor[*cache]())
	handle, err := handleFor[*cache](h)
	if err != nil {
		t.Fatalf("handleFor: %v", err)
	}
	var seen int
	if err := handle.View(func(v *cache) { seen = v.hits }); err != nil {
		t.Fatalf("view: %v", err)
	}
	if seen != 7 {
		t.Errorf("seen = %d, want 7", seen)
	}
}
