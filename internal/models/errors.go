package models

import "errors"

// Custom errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key violation")
	ErrInvalidID      = errors.New("invalid ID format")
	ErrInvalidRaceKey = NewValidationError("invalid_race_key", "race key requires a date, venue and positive race number")
	ErrNoEntries      = NewValidationError("no_entries", "race has no declared runners")
)

// ValidationError is a coded, user-facing validation failure
type ValidationError struct {
	Code    string
	Message string
}

// NewValidationError creates a validation error with a stable code
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
