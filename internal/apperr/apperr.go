// Package apperr defines the error taxonomy shared by every layer of the
// registry. Each error carries an HTTP status, a stable symbolic code, an
// optional structured details payload, and an operational flag. Operational
// errors are expected client-facing conditions (bad input, missing resource,
// permission denial); only non-operational errors are worth a log line.
//
// Errors are immutable after construction: constructors are pure, and the
// normalizer in the transport layer reads them without modification.
package apperr

import "net/http"

// Symbolic codes produced by this service. Business logic may introduce new
// codes through New, but these cover every condition the core emits.
const (
	CodeError        = "ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInvalidToken = "INVALID_TOKEN"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeValidation   = "VALIDATION_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// FieldError is a single field-level validation violation. Field is a
// dotted/bracketed path to the offending leaf, e.g. "items[1]" or
// "nested.deep.value".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Error is the uniform carrier for every failure the service reports.
type Error struct {
	Message     string
	Status      int
	Code        string
	Details     any
	Operational bool
}

func (e *Error) Error() string {
	return e.Message
}

// New builds a taxonomy error. A zero status defaults to 500 and an empty
// code to CodeError.
func New(message string, status int, code string) *Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if code == "" {
		code = CodeError
	}
	return &Error{
		Message:     message,
		Status:      status,
		Code:        code,
		Operational: true,
	}
}

// BadRequest reports malformed but well-typed client input, e.g. a missing
// identifier path segment.
func BadRequest(message string) *Error {
	if message == "" {
		message = "Bad request"
	}
	return New(message, http.StatusBadRequest, CodeBadRequest)
}

// Unauthorized reports a missing or unusable credential.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Unauthorized"
	}
	return New(message, http.StatusUnauthorized, CodeUnauthorized)
}

// Forbidden reports an authenticated caller with insufficient privilege.
func Forbidden(message string) *Error {
	if message == "" {
		message = "Forbidden"
	}
	return New(message, http.StatusForbidden, CodeForbidden)
}

// NotFound reports an absent entity.
func NotFound(message string) *Error {
	if message == "" {
		message = "Not found"
	}
	return New(message, http.StatusNotFound, CodeNotFound)
}

// Conflict reports a uniqueness or state conflict.
func Conflict(message string) *Error {
	if message == "" {
		message = "Conflict"
	}
	return New(message, http.StatusConflict, CodeConflict)
}

// Validation reports one or more field-level violations. Details is
// conventionally a []FieldError in declaration order.
func Validation(message string, details any) *Error {
	if message == "" {
		message = "Validation error"
	}
	e := New(message, http.StatusBadRequest, CodeValidation)
	e.Details = details
	return e
}

// Internal reports an unclassified server fault with a stable message.
func Internal(message string) *Error {
	if message == "" {
		message = "Internal server error"
	}
	return New(message, http.StatusInternalServerError, CodeInternal)
}
