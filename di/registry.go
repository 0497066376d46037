package di

import (
	"context"
	"sync/atomic"

	apperr "github.com/skillsenselab/injectkit/errors"
)

// constructor is the type-erased shape every registered constructor is
// reduced to: build one instance for the given scope, already wrapped in
// a Holder.
type constructor func(ctx context.Context, s *Scope) (*Holder, error)

// registry is one per-lifecycle collection of constructors. Reads load
// the current snapshot without locking; writes copy the snapshot, add the
// entry and install it with a compare-and-swap retry loop, so concurrent
// readers always observe either the fully-old or fully-new snapshot and
// concurrent writers never lose an update.
type registry struct {
	snapshot atomic.Pointer[map[Key]constructor]
}

func newRegistry() *registry {
	r := &registry{}
	empty := make(map[Key]constructor)
	r.snapshot.Store(&empty)
	return r
}

// lookup is a pure, non-blocking read against the current snapshot.
func (r *registry) lookup(k Key) (constructor, bool) {
	m := *r.snapshot.Load()
	c, ok := m[k]
	return c, ok
}

func (r *registry) contains(k Key) bool {
	_, ok := r.lookup(k)
	return ok
}

// install adds a constructor under k, failing if k is already present in
// the snapshot observed at swap time.
func (r *registry) install(k Key, c constructor) error {
	for {
		cur := r.snapshot.Load()
		if _, dup := (*cur)[k]; dup {
			return apperr.AlreadyRegistered(k.Name)
		}
		next := make(map[Key]constructor, len(*cur)+1)
		for key, ctor := range *cur {
			next[key] = ctor
		}
		next[k] = c
		if r.snapshot.CompareAndSwap(cur, &next) {
			return nil
		}
	}
}

func (r *registry) len() int {
	return len(*r.snapshot.Load())
}

func (r *registry) keys() []Key {
	m := *r.snapshot.Load()
	out := make([]Key, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// reset swaps in an empty snapshot. Test-only, via Container.Reset.
func (r *registry) reset() {
	empty := make(map[Key]constructor)
	r.snapshot.Store(&empty)
}
