package logger

import "sync"

// Named loggers let long-lived subsystems (the engine, the component
// registry, HTTP servers) share pre-configured loggers instead of
// re-deriving them at every call site.
var named sync.Map // string -> *Logger

// Register stores a named logger, replacing any previous registration.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Get returns the logger registered under name. Unregistered names fall
// back to the global logger tagged with the requested component.
func Get(name string) *Logger {
	if v, ok := named.Load(name); ok {
		return v.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults seeds the registry with component-tagged loggers
// derived from the global one. Call after Init.
func RegisterDefaults(names ...string) {
	for _, name := range names {
		Register(name, GetGlobalLogger().WithComponent(name))
	}
}
