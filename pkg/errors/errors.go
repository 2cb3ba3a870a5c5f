// Package errors provides structured, coded errors shared by the CLI, the
// HTTP API and the stores.
//
// # Error Codes
//
// Codes follow a prefix convention:
//   - INVALID_*: input validation failures
//   - *NOT_FOUND: missing people, relationships or files
//   - STORE_UNAVAILABLE: the data store could not be reached
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPerson, "last name is required")
//	if errors.Is(err, errors.ErrCodeInvalidPerson) {
//	    // reject the edit
//	}
//
//	err = errors.Wrap(errors.ErrCodeStoreUnavailable, cause, "fetch people")
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput        Code = "INVALID_INPUT"
	ErrCodeInvalidPerson       Code = "INVALID_PERSON"
	ErrCodeInvalidRelationship Code = "INVALID_RELATIONSHIP"
	ErrCodeInvalidFormat       Code = "INVALID_FORMAT"
	ErrCodeInvalidEngine       Code = "INVALID_ENGINE"
	ErrCodeInvalidPath         Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound             Code = "NOT_FOUND"
	ErrCodePersonNotFound       Code = "PERSON_NOT_FOUND"
	ErrCodeRelationshipNotFound Code = "RELATIONSHIP_NOT_FOUND"
	ErrCodeFileNotFound         Code = "FILE_NOT_FOUND"

	// Access errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"
	ErrCodeForbidden    Code = "FORBIDDEN"

	// Backend errors
	ErrCodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	ErrCodeInternal         Code = "INTERNAL_ERROR"
	ErrCodeUnsupported      Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps a code to the status the API responds with.
// Unknown and empty codes map to 500.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidPerson, ErrCodeInvalidRelationship,
		ErrCodeInvalidFormat, ErrCodeInvalidEngine, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodePersonNotFound, ErrCodeRelationshipNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// PersonNotFound reports a missing person.
func PersonNotFound(id string) *Error {
	return New(ErrCodePersonNotFound, "person %q not found", id)
}

// RelationshipNotFound reports a missing relationship.
func RelationshipNotFound(id string) *Error {
	return New(ErrCodeRelationshipNotFound, "relationship %q not found", id)
}

// Unavailable wraps a backend connection or query failure.
func Unavailable(backend string, cause error) *Error {
	return Wrap(ErrCodeStoreUnavailable, cause, "%s store", backend)
}
