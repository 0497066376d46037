package di

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	apperr "github.com/skillsenselab/injectkit/errors"
	"github.com/skillsenselab/injectkit/logger"
)

// Scope is a unit of work. Scoped services resolved through it are
// cached for its lifetime and disposed when it closes. A Scope must not
// be used after Close.
type Scope struct {
	id        string
	container *Container
	instances sync.Map // Key -> *Holder
	closed    atomic.Bool
	openedAt  time.Time
}

// NewScope opens a new unit of work against the container.
func (c *Container) NewScope() *Scope {
	s := &Scope{
		id:        uuid.NewString(),
		container: c,
		openedAt:  time.Now(),
	}
	c.observer.ScopeOpened(s.id)
	c.log.Debug("scope opened", logger.Fields(logger.FieldScopeID, s.id))
	return s
}

// NewScope opens a unit of work against the default container.
func NewScope() *Scope {
	return Default().NewScope()
}

// ID returns the scope's unique identifier.
func (s *Scope) ID() string { return s.id }

// Container returns the container this scope belongs to.
func (s *Scope) Container() *Container { return s.container }

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool { return s.closed.Load() }

type scopeCtxKey struct{}

// Enter returns a context carrying this scope. Resolve and its variants
// look the scope up from the context they are given.
func (s *Scope) Enter(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeCtxKey{}, s)
}

// FromContext extracts the active scope from ctx.
func FromContext(ctx context.Context) (*Scope, error) {
	s, ok := ctx.Value(scopeCtxKey{}).(*Scope)
	if !ok || s == nil {
		return nil, apperr.NoActiveScope()
	}
	return s, nil
}

// Close disposes every scoped instance created in this scope and marks
// it unusable. Disposal happens exactly once: concurrent or repeated
// calls after the first are no-ops. Instances whose value implements
// io.Closer's shape (Close() error) are closed; their errors are joined
// and returned.
func (s *Scope) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	var errs []error
	s.instances.Range(func(key, value any) bool {
		s.instances.Delete(key)
		h, ok := value.(*Holder)
		if !ok {
			return true
		}
		if err := h.dispose(); err != nil {
			k := key.(Key)
			errs = append(errs, err)
			s.container.log.Warn("scoped instance close failed", logger.Fields(
				logger.FieldScopeID, s.id,
				logger.FieldService, k.String(),
				logger.FieldError, err.Error(),
			))
		}
		return true
	})
	elapsed := time.Since(s.openedAt)
	s.container.observer.ScopeClosed(s.id, elapsed)
	s.container.log.Debug("scope closed", logger.Fields(
		logger.FieldScopeID, s.id,
		logger.FieldDuration, elapsed.Milliseconds(),
	))
	return errors.Join(errs...)
}

// RunWithScope opens a scope on the container, runs fn with a context
// carrying it, and closes the scope afterwards. The function's error and
// any disposal errors are joined.
func (c *Container) RunWithScope(ctx context.Context, fn func(ctx context.Context) error) error {
	s := c.NewScope()
	err := fn(s.Enter(ctx))
	return errors.Join(err, s.Close())
}

// RunWithScope runs fn inside a fresh scope on the default container.
func RunWithScope(ctx context.Context, fn func(ctx context.Context) error) error {
	return Default().RunWithScope(ctx, fn)
}
