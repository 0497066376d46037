package di

import (
	"reflect"
	"sync"
	"sync/atomic"

	apperr "github.com/skillsenselab/injectkit/errors"
)

// Holder is the type-erased storage unit for one constructed instance.
// It is the only value kept in the singleton cache and in scoped caches,
// so a single map type can store arbitrarily different service types.
// The contained value is guarded by its own read/write lock, decoupled
// from the concurrency control of the maps that hold the Holder.
type Holder struct {
	mu        sync.RWMutex
	value     any
	typ       reflect.Type
	corrupted atomic.Bool
	disposed  atomic.Bool
}

// newHolder wraps a constructed value. typ is the registration's static
// type identity, which may be an interface type; the dynamic type of
// value is irrelevant for key matching.
func newHolder(value any, typ reflect.Type) *Holder {
	return &Holder{value: value, typ: typ}
}

// withRead runs fn with the value under the read lock. A panic inside fn
// marks the holder corrupted before propagating.
func (h *Holder) withRead(fn func(any)) error {
	if h.corrupted.Load() {
		return apperr.LockCorrupted(h.typ.String())
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	defer func() {
		if r := recover(); r != nil {
			h.corrupted.Store(true)
			panic(r)
		}
	}()
	fn(h.value)
	return nil
}

// withWrite runs fn with the value under the write lock and replaces the
// stored value with fn's result. A panic inside fn marks the holder
// corrupted before propagating.
func (h *Holder) withWrite(fn func(any) any) error {
	if h.corrupted.Load() {
		return apperr.LockCorrupted(h.typ.String())
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			h.corrupted.Store(true)
			panic(r)
		}
	}()
	h.value = fn(h.value)
	return nil
}

// dispose runs the instance's cleanup logic, if any, under the write lock.
// Instances that implement Close() error are closed; everything else is a
// no-op. Disposal happens at most once per holder, so a scope teardown
// racing a late construction cannot close the same instance twice. A
// corrupted holder is not closed.
func (h *Holder) dispose() error {
	if h.corrupted.Load() {
		return apperr.LockCorrupted(h.typ.String())
	}
	if !h.disposed.CompareAndSwap(false, true) {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if closer, ok := h.value.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Handle is the strongly typed, shared-ownership view of a Holder.
// Handles obtained for the same cached registration share one Holder, so
// mutations through one Handle are visible through every other.
type Handle[T any] struct {
	holder *Holder
}

// handleFor converts a type-erased Holder back to a typed Handle. A type
// mismatch indicates a registration or key-derivation bug; it is surfaced
// as an error, never as a panic.
func handleFor[T any](h *Holder) (*Handle[T], error) {
	want := TypeFor[T]()
	if h.typ != want {
		return nil, apperr.TypeMismatch(want.String(), h.typ.String())
	}
	return &Handle[T]{holder: h}, nil
}

// Same reports whether two handles share the same underlying instance.
// This is an identity check, not an equality check.
func (x *Handle[T]) Same(o *Handle[T]) bool {
	return o != nil && x.holder == o.holder
}

// Value returns the current value under the read lock.
func (x *Handle[T]) Value() (T, error) {
	var out T
	err := x.holder.withRead(func(v any) {
		out = v.(T)
	})
	return out, err
}

// MustValue returns the current value, panicking if the holder is corrupted.
func (x *Handle[T]) MustValue() T {
	v, err := x.Value()
	if err != nil {
		panic(err)
	}
	return v
}

// View runs fn with the value under the read lock.
func (x *Handle[T]) View(fn func(T)) error {
	return x.holder.withRead(func(v any) {
		fn(v.(T))
	})
}

// Update runs fn under the write lock and stores its result as the new
// value. Use this to mutate value-typed services; pointer-typed services
// can simply return their receiver.
func (x *Handle[T]) Update(fn func(T) T) error {
	return x.holder.withWrite(func(v any) any {
		return fn(v.(T))
	})
}
