package di

import (
	"context"
	"reflect"
	"sync"

	apperr "github.com/skillsenselab/injectkit/errors"
)

// resolveStack tracks the type identities currently being constructed
// along one resolution chain. Identity is the bare reflect.Type: a named
// registration resolving another name of the same type is still a cycle,
// so the registration name never participates in the check. The stack
// rides on the context threaded into constructors, so nested Resolve
// calls from a constructor see the types above them while unrelated
// concurrent resolutions of the same type do not interfere.
type resolveStack struct {
	mu    sync.Mutex
	types []reflect.Type
}

type stackCtxKey struct{}

// withStack ensures ctx carries a resolution stack, installing a fresh
// one for the outermost Resolve of a chain.
func withStack(ctx context.Context) (context.Context, *resolveStack) {
	if st, ok := ctx.Value(stackCtxKey{}).(*resolveStack); ok {
		return ctx, st
	}
	st := &resolveStack{}
	return context.WithValue(ctx, stackCtxKey{}, st), st
}

// enter pushes the key's type onto the stack, failing if that type is
// already in flight. The key's full name appears only in the error.
func (st *resolveStack) enter(key Key) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i := len(st.types) - 1; i >= 0; i-- {
		if st.types[i] == key.Type {
			return apperr.CircularDependency(key.String())
		}
	}
	st.types = append(st.types, key.Type)
	return nil
}

// exit pops the most recent occurrence of the key's type.
func (st *resolveStack) exit(key Key) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i := len(st.types) - 1; i >= 0; i-- {
		if st.types[i] == key.Type {
			st.types = append(st.types[:i], st.types[i+1:]...)
			return
		}
	}
}

// depth reports how many types are currently in flight on the chain.
func (st *resolveStack) depth() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.types)
}
