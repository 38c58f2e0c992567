// Package apperr defines the API error taxonomy and its HTTP rendering.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindInvalidCredentials
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// FieldError is one field-level validation problem.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the single error type surfaced by services to the HTTP boundary.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "Invalid credentials"}
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Internal wraps an unexpected failure. The message is never shown to clients.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// FromValidation converts the result of an ozzo Validate call. A nil input
// yields nil; field errors become a KindValidation error with one entry per
// field, sorted by field name.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		var internal validation.InternalError
		if errors.As(err, &internal) {
			return Internal("validation rule failed", err)
		}
		return Validation(err.Error())
	}
	fields := make([]FieldError, 0, len(verrs))
	for name, ferr := range verrs {
		if ferr == nil {
			continue
		}
		fields = append(fields, FieldError{Field: name, Message: ferr.Error()})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return Validation("validation failed", fields...)
}

// KindOf reports the Kind of err, treating foreign errors as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict, KindInvalidCredentials:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
