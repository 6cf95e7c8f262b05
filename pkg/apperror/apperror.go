// Package apperror defines the structured error taxonomy shared by all
// services and mapped onto HTTP status codes at the transport boundary.
package apperror

import (
	"errors"
	"net/http"
)

// Kind identifies the failure class of an operation.
type Kind string

const (
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindInvalidInput       Kind = "INVALID_INPUT"
	KindNotFound           Kind = "NOT_FOUND"
	KindInsufficientFunds  Kind = "INSUFFICIENT_FUNDS"
	KindAlreadyOwned       Kind = "ALREADY_OWNED"
	KindStackLimitReached  Kind = "STACK_LIMIT_REACHED"
	KindFailedPrecondition Kind = "FAILED_PRECONDITION"
	KindConflict           Kind = "CONFLICT"
	KindInternal           Kind = "INTERNAL"
)

// Error is a structured service error. Every failure aborts its enclosing
// transaction, so an Error never accompanies a partial effect.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus maps the error kind to an HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientFunds, KindAlreadyOwned, KindStackLimitReached, KindConflict:
		return http.StatusConflict
	case KindFailedPrecondition:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// Unauthenticated creates an error for requests with no valid caller identity.
func Unauthenticated(message string) *Error {
	if message == "" {
		message = "you must be logged in"
	}
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// InvalidInput creates an error for malformed or insufficient payloads.
func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// NotFound creates an error for missing catalog items or accounts.
func NotFound(message string) *Error {
	if message == "" {
		message = "resource not found"
	}
	return &Error{Kind: KindNotFound, Message: message}
}

// InsufficientFunds creates an error for balance adjustments that would go
// negative.
func InsufficientFunds(message string) *Error {
	if message == "" {
		message = "not enough coins"
	}
	return &Error{Kind: KindInsufficientFunds, Message: message}
}

// AlreadyOwned creates an error for repeat purchases of non-stackable items.
func AlreadyOwned(message string) *Error {
	if message == "" {
		message = "you already own this item"
	}
	return &Error{Kind: KindAlreadyOwned, Message: message}
}

// StackLimitReached creates an error for purchases past an item's max stack.
func StackLimitReached(message string) *Error {
	if message == "" {
		message = "max stack reached"
	}
	return &Error{Kind: KindStackLimitReached, Message: message}
}

// FailedPrecondition creates an error for operations whose required state
// is missing, e.g. an absent account profile.
func FailedPrecondition(message string) *Error {
	return &Error{Kind: KindFailedPrecondition, Message: message}
}

// Conflict creates an error for contended writes the caller may retry.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal creates an error for unexpected failures.
func Internal(message string) *Error {
	if message == "" {
		message = "an unexpected error occurred"
	}
	return &Error{Kind: KindInternal, Message: message}
}

// KindOf extracts the Kind from any error, returning KindInternal for
// errors that are not *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
