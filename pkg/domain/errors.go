package domain

import "fmt"

// ErrorCode classifies a domain error for transport-layer mapping.
type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidState ErrorCode = "INVALID_STATE"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeInternal     ErrorCode = "INTERNAL"
)

// Error is a typed domain error carried from the domain and application
// layers to the transport layer, which maps the code to a status.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidationError reports invalid input (missing fields, bad ranges).
func NewValidationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// NewNotFoundError reports a missing entity, never silently defaulted.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewUnauthorizedError reports a missing or invalid caller identity.
func NewUnauthorizedError(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// NewForbiddenError reports an authenticated caller lacking the required role.
func NewForbiddenError(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// NewInvalidStateError reports a lifecycle operation not permitted in the
// current status.
func NewInvalidStateError(message string) *Error {
	return &Error{Code: CodeInvalidState, Message: message}
}

// NewConflictError reports a clash with existing state, such as an
// overlapping reservation or a lost optimistic-lock race.
func NewConflictError(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// CodeOf extracts the error code, defaulting to CodeInternal for
// untyped errors.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return CodeInternal
}

// IsCode reports whether err is a domain error with the given code.
func IsCode(err error, code ErrorCode) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}
