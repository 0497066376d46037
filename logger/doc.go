// Package logger provides structured logging for the injectkit runtime,
// built on zerolog. It exposes a global logger for package-level use, a
// named-logger registry for per-component loggers, and helpers for the
// field conventions used across the engine (service keys, lifecycles,
// scope ids, durations).
package logger
