// Package resilience provides retry with exponential backoff. The di
// package uses it for opt-in constructor retry; it is usable on its own
// for any fallible operation.
package resilience
