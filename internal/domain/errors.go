package domain

import (
	"errors"
	"fmt"
)

// ErrorKind partitions every failure the services can report. The HTTP layer
// owns the single translation from kind to status code; no other component
// serializes a response.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindNotFound         ErrorKind = "not_found"
	KindConflict         ErrorKind = "conflict"
	KindInvalidParameter ErrorKind = "invalid_parameter"
	KindUnauthenticated  ErrorKind = "unauthenticated"
	KindInternal         ErrorKind = "internal"
)

// FieldError is one field-level violation inside a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Error is the taxonomy error carried from services to the HTTP layer.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  []FieldError
	Err     error // wrapped cause, logged but never sent to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is match on kind, so services can compare against the
// sentinel-style values below the way the repositories compare sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is kind checks.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrInvalidParameter = &Error{Kind: KindInvalidParameter}
	ErrUnauthenticated  = &Error{Kind: KindUnauthenticated}
	ErrInternal         = &Error{Kind: KindInternal}
)

// ValidationError builds a field-level validation failure.
func ValidationError(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NotFoundError reports that an id did not resolve to a resource.
func NotFoundError(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// ConflictError reports a uniqueness or dependency conflict.
func ConflictError(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindConflict, Message: message, Fields: fields}
}

// InvalidParameterError reports a malformed query-string parameter.
func InvalidParameterError(param, message string, value any) *Error {
	return &Error{
		Kind:    KindInvalidParameter,
		Message: fmt.Sprintf("invalid parameter %q: %s", param, message),
		Fields:  []FieldError{{Field: param, Message: message, Value: value}},
	}
}

// UnauthenticatedError reports a write attempted without a verified identity.
func UnauthenticatedError(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// InternalError wraps an unexpected failure.
func InternalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the taxonomy kind, defaulting to KindInternal for errors
// produced outside the taxonomy.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
