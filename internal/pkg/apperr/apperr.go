// Package apperr defines the error taxonomy shared by services and stores.
// Handlers translate these into HTTP responses via response.Error.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError is a single per-field validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.message()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.message() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) message() string {
	if e.Message == "" {
		return "validation failed"
	}
	return e.Message
}

// Add records a message for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Messages returns the per-field messages in insertion order.
func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Message)
	}
	return out
}

// OrNil returns e when it holds at least one field error, otherwise nil.
func (e *ValidationError) OrNil() error {
	if e == nil || (len(e.Fields) == 0 && e.Message == "") {
		return nil
	}
	return e
}

// NotFoundError reports an unresolvable id or slug.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return e.Resource + " not found"
}

// AuthorizationError reports an authenticated caller that may not perform
// the operation.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	if e.Message == "" {
		return "not authorized"
	}
	return e.Message
}

// DuplicateKeyError reports a uniqueness constraint violation raised by the
// storage layer.
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return "duplicate field value entered"
	}
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

func Validation(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

func NotFound(resource string) error { return &NotFoundError{Resource: resource} }

func Unauthorized(message string) error { return &AuthorizationError{Message: message} }

func Duplicate(field string, cause error) error {
	return &DuplicateKeyError{Field: field, Err: cause}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsAuthorization(err error) bool {
	var target *AuthorizationError
	return errors.As(err, &target)
}

// IsDuplicate reports whether err is a duplicate key violation. With a
// non-empty field it only matches violations on that field.
func IsDuplicate(err error, field string) bool {
	var target *DuplicateKeyError
	if !errors.As(err, &target) {
		return false
	}
	return field == "" || target.Field == field
}
