package bootstrap

import (
	"context"
	"sync"

	"github.com/skillsenselab/injectkit/di"
)

var (
	declMu   sync.Mutex
	declared []di.Registration
)

// Declare records a named registration step to run during application
// startup, in declaration order. Packages call Declare from their
// wiring code; nothing runs until the App initializes its container.
func Declare(name string, fn func(ctx context.Context, c *di.Container) error) {
	declMu.Lock()
	defer declMu.Unlock()
	declared = append(declared, di.Registration{Name: name, Fn: fn})
}

// Declared returns a snapshot of the declared registrations in order.
func Declared() []di.Registration {
	declMu.Lock()
	defer declMu.Unlock()
	out := make([]di.Registration, len(declared))
	copy(out, declared)
	return out
}

// Initialize runs every declared registration against the default
// container, exactly once; concurrent first callers block until the
// winner finishes and then observe its result. Applications built on
// App need not call this; App initializes its own container.
func Initialize(ctx context.Context) error {
	return di.Default().Initialize(ctx, Declared()...)
}

// ClearDeclarations drops all declared registrations. Test isolation
// only.
func ClearDeclarations() {
	declMu.Lock()
	defer declMu.Unlock()
	declared = nil
}
