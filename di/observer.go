package di

import (
	"context"
	"time"
)

// Observer receives engine events. Implementations must be safe for
// concurrent use; the engine calls them on the resolution hot path.
// The observability package provides an OpenTelemetry implementation.
type Observer interface {
	// ResolveStart is called before the lookup for key begins. The
	// returned context is threaded through the resolution, so an
	// implementation may attach a span to it.
	ResolveStart(ctx context.Context, key Key) context.Context

	// ResolveEnd is called after resolution of key finished, on success
	// and failure alike. lifecycle is the matched category, or a value
	// whose String() is "unknown" when no registration matched.
	ResolveEnd(ctx context.Context, key Key, lifecycle Lifecycle, err error, elapsed time.Duration)

	// ScopeOpened and ScopeClosed bracket the life of a unit-of-work scope.
	ScopeOpened(id string)
	ScopeClosed(id string, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) ResolveStart(ctx context.Context, _ Key) context.Context { return ctx }
func (noopObserver) ResolveEnd(context.Context, Key, Lifecycle, error, time.Duration) {
}
func (noopObserver) ScopeOpened(string)                {}
func (noopObserver) ScopeClosed(string, time.Duration) {}
