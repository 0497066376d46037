package di

import (
	"fmt"
	"reflect"
)

// Lifecycle determines how instances of a registration are cached and shared.
type Lifecycle int

const (
	// LifecycleSingleton caches one instance for the life of the process.
	LifecycleSingleton Lifecycle = iota
	// LifecycleScoped caches one instance per unit-of-work Scope.
	LifecycleScoped
	// LifecycleTransient constructs a fresh instance on every resolution.
	LifecycleTransient
)

// lifecycleNone marks resolutions that never matched a registration.
const lifecycleNone Lifecycle = -1

func (l Lifecycle) String() string {
	switch l {
	case LifecycleSingleton:
		return "singleton"
	case LifecycleScoped:
		return "scoped"
	case LifecycleTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Key identifies one registration: a type identity plus an optional
// instance name. At most one registration may exist per key across all
// lifecycle categories.
type Key struct {
	Type reflect.Type
	Name string
}

func (k Key) String() string {
	if k.Name == "" {
		return k.Type.String()
	}
	return fmt.Sprintf("%s[%s]", k.Type, k.Name)
}

// TypeFor returns the type identity used for registration and resolution
// of T. It works for interface types as well as concrete ones.
func TypeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// KeyFor builds the Key for type T with the given instance name.
func KeyFor[T any](name string) Key {
	return Key{Type: TypeFor[T](), Name: name}
}
