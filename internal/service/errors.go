// Package service implements the business rules of the application on top of
// the store abstractions. Services are stateless and safe for concurrent use;
// uniqueness and idempotence invariants are enforced by store constraints,
// not application-level locking.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is(); the API layer maps each to an HTTP
// status.
var (
	// ErrValidation is the root of all user-visible input errors.
	// Field-level detail travels in a ValidationError wrapping this.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials is returned by Login for both unknown
	// identifiers and wrong passwords. The two cases are deliberately
	// indistinguishable so login cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden indicates the requester is authenticated but does not own
	// the resource it tried to modify.
	ErrForbidden = errors.New("action not permitted")

	// ErrSlugGenerationExhausted indicates no unique slug could be derived
	// within the retry budget. Fatal to the publish operation, not the
	// process.
	ErrSlugGenerationExhausted = errors.New("could not generate a unique article slug")
)

// ErrSelfFollow is returned when a user attempts to follow themselves.
var ErrSelfFollow = &ValidationError{Field: "username", Message: "cannot follow yourself"}

// ValidationError carries field-level detail for a user-visible input error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// Unwrap makes every ValidationError match ErrValidation with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a field-level validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
