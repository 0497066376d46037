package errors

import (
	"errors"
	"fmt"
)

// Error is the unified injectkit error type.
type Error struct {
	// Code is a machine-readable error code.
	Code Code `json:"code"`
	// Service is the instance name of the affected registration, "" for unnamed.
	Service string `json:"service,omitempty"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// --- Constructors, one per taxonomy entry ---

// ServiceNotFound creates an error for a key with no matching registration.
func ServiceNotFound(name string) *Error {
	return &Error{
		Code: CodeServiceNotFound, Service: name,
		Message: fmt.Sprintf("service not found with name: %q", name),
	}
}

// AlreadyRegistered creates an error for a duplicate registration.
func AlreadyRegistered(name string) *Error {
	return &Error{
		Code: CodeAlreadyRegistered, Service: name,
		Message: fmt.Sprintf("service already registered with name: %q", name),
	}
}

// CircularDependency creates an error for a self-referential resolution chain.
func CircularDependency(name string) *Error {
	return &Error{
		Code: CodeCircularDependency, Service: name,
		Message: fmt.Sprintf("circular dependency detected for service with name: %q", name),
	}
}

// ConstructorFailure wraps a constructor's own error, preserving the cause.
func ConstructorFailure(name string, cause error) *Error {
	return &Error{
		Code: CodeConstructorFailure, Service: name,
		Message: "service constructor failed", Cause: cause,
	}
}

// NoActiveScope creates an error for resolution outside a unit-of-work scope.
func NoActiveScope() *Error {
	return &Error{
		Code:    CodeNoActiveScope,
		Message: "no active scope on context",
	}
}

// TypeMismatch creates an error for a stored instance whose concrete type
// does not match the requested one. This indicates a registration bug and
// should be unreachable in correct usage, but it is surfaced as an error
// rather than a panic.
func TypeMismatch(want, got string) *Error {
	e := &Error{
		Code:    CodeTypeMismatch,
		Message: fmt.Sprintf("type mismatch: requested %s, stored %s", want, got),
	}
	return e.WithDetail("want", want).WithDetail("got", got)
}

// LockCorrupted creates an error for an instance whose lock was left in a
// broken state by a prior failure inside a held section. The instance is
// unusable from this point on.
func LockCorrupted(name string) *Error {
	return &Error{
		Code: CodeLockCorrupted, Service: name,
		Message: "instance lock corrupted by a prior failure",
	}
}

// --- Predicates ---

// CodeOf extracts the Code of the outermost *Error in the chain, or ""
// if the chain contains none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether the error chain contains an *Error with the
// code, at any depth. A CONSTRUCTOR_FAILURE wrapping a SERVICE_NOT_FOUND
// matches both codes.
func HasCode(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}
