package coursedata

import (
	"errors"

	"github.com/yourusername/race-dynamics/internal/models"
)

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeCircuitOpen          = "circuit_open"
)

// ErrDisabled is returned when the course API is not configured
var ErrDisabled = errors.New("course API disabled")

// APIError represents a failed call to the course characteristics provider
type APIError struct {
	Code    string
	Message string
	Err     error
}

// NewAPIError creates a new course API error
func NewAPIError(code, message string, err error) *APIError {
	return &APIError{Code: code, Message: message, Err: err}
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return "course_api: " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return "course_api: " + e.Code + ": " + e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets a not_found error match models.ErrNotFound
func (e *APIError) Is(target error) bool {
	return e.Code == ErrCodeNotFound && target == models.ErrNotFound
}
