// Package common defines shared constants and sentinel errors used across
// the client layers. Callers should use errors.Is / errors.As to match them.
package common

import "errors"

var (
	// Repository / storage errors.
	ErrNotFound = errors.New("not found")

	// Auth errors.
	ErrUnauthorized = errors.New("not authenticated")

	// Local input validation errors, raised before any network call.
	ErrInvalidUsername  = errors.New("username is not valid")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 10 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidWeight    = errors.New("weight is not a valid number")
	ErrInvalidHeight    = errors.New("height is out of range")
	ErrInvalidBirthDate = errors.New("birth date is out of range")
	ErrInvalidName      = errors.New("name contains invalid characters")
	ErrProfileRequired  = errors.New("profile must be configured first")
)

// ValidationError carries a human-readable message from the backend's
// validation layer. Unlike connectivity failures it must reach the caller,
// because the local write is blocked on it.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError, substituting fallback when
// the backend supplied no message.
func NewValidationError(message, fallback string) *ValidationError {
	if message == "" {
		message = fallback
	}
	return &ValidationError{Message: message}
}
