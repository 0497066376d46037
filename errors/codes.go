package errors

// Code represents a machine-readable error code.
type Code string

// Lookup errors
const (
	// CodeServiceNotFound indicates no registration matched the requested key.
	CodeServiceNotFound Code = "SERVICE_NOT_FOUND"
	// CodeAlreadyRegistered indicates a duplicate registration for a key.
	CodeAlreadyRegistered Code = "SERVICE_ALREADY_REGISTERED"
)

// Resolution errors
const (
	// CodeCircularDependency indicates a self-referential resolution chain.
	CodeCircularDependency Code = "CIRCULAR_DEPENDENCY"
	// CodeConstructorFailure indicates a constructor returned an error.
	CodeConstructorFailure Code = "CONSTRUCTOR_FAILURE"
	// CodeNoActiveScope indicates resolution was attempted outside a scope.
	CodeNoActiveScope Code = "NO_ACTIVE_SCOPE"
)

// Invariant violations
const (
	// CodeTypeMismatch indicates a stored instance did not match the requested type.
	CodeTypeMismatch Code = "TYPE_MISMATCH"
	// CodeLockCorrupted indicates an instance lock was left in a broken state.
	CodeLockCorrupted Code = "LOCK_CORRUPTED"
)

var recoverableCodes = map[Code]bool{
	CodeServiceNotFound:    true,
	CodeNoActiveScope:      true,
	CodeAlreadyRegistered:  false,
	CodeCircularDependency: false,
	CodeConstructorFailure: false,
	CodeTypeMismatch:       false,
	CodeLockCorrupted:      false,
}

// IsRecoverableCode reports whether a caller is expected to be able to
// continue after an error with this code, for example by falling back to
// another service. Configuration-level errors such as duplicate
// registration are treated as startup-fatal by embedding applications.
func IsRecoverableCode(code Code) bool {
	return recoverableCodes[code]
}
