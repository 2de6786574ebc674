// Package apperr defines the error kinds the service layer reports to the
// HTTP boundary. Handlers map them to status codes; everything unclassified
// is a 500.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConsistency marks a transaction step that touched zero rows after a
	// successful existence check. Always a server-side fault, never a 404.
	ErrConsistency = errors.New("inconsistent state")
)

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// ValidationError is detected before any transaction starts and never
// touches storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError surfaces a storage uniqueness violation. Field tells the
// boundary layer which form field is at fault.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

func Conflict(field string) error {
	return &ConflictError{Field: field}
}

type ConsistencyError struct {
	Op string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s affected no rows", e.Op)
}

func (e *ConsistencyError) Unwrap() error {
	return ErrConsistency
}

func Consistency(op string) error {
	return &ConsistencyError{Op: op}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
