package services

import "errors"

// Kind classifies a service failure for transport mapping.
type Kind int

const (
	// KindInternal is the fallback for unclassified failures. No detail
	// beyond a generic message may leak to callers in production posture.
	KindInternal Kind = iota
	// KindNotFound: a referenced entity does not exist.
	KindNotFound
	// KindForbidden: authenticated but not permitted.
	KindForbidden
	// KindUnauthenticated: missing, invalid or expired credential.
	KindUnauthenticated
	// KindValidation: malformed or rejected input.
	KindValidation
	// KindConflict: uniqueness violation (duplicate email or slug).
	KindConflict
	// KindDependency: an external collaborator (store, media, mail)
	// failed in a way that blocks the requested operation.
	KindDependency
)

// Error carries a taxonomy kind and a caller-safe message. It propagates
// unmodified from the orchestrators to the transport boundary.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// ErrNotFound builds a NotFound error.
func ErrNotFound(message string) *Error { return newError(KindNotFound, message, nil) }

// ErrForbidden builds a Forbidden error.
func ErrForbidden(message string) *Error { return newError(KindForbidden, message, nil) }

// ErrUnauthenticated builds an Unauthenticated error.
func ErrUnauthenticated(message string) *Error { return newError(KindUnauthenticated, message, nil) }

// ErrValidation builds a ValidationFailed error.
func ErrValidation(message string) *Error { return newError(KindValidation, message, nil) }

// ErrConflict builds a Conflict error.
func ErrConflict(message string) *Error { return newError(KindConflict, message, nil) }

// ErrDependency builds a DependencyFailure error wrapping its cause.
func ErrDependency(message string, cause error) *Error {
	return newError(KindDependency, message, cause)
}

// ErrInternal wraps an unexpected failure behind a generic message.
func ErrInternal(cause error) *Error {
	return newError(KindInternal, "internal error", cause)
}

// KindOf extracts the taxonomy kind from any error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
