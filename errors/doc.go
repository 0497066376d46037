// Package errors defines the error taxonomy of the injectkit runtime.
// It implements structured error types with machine-readable codes and
// cause preservation so that resolution failures are always returned as
// typed results, never as panics.
package errors
