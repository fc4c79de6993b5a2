package fleet

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNoBaseURL is returned when the robot API base URL is missing.
	ErrNoBaseURL = errors.New("fleet: base URL required")

	// ErrMalformedResponse is returned when a response body cannot be decoded.
	ErrMalformedResponse = errors.New("fleet: malformed response body")
)

// APIError represents a non-success response from the robot API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Endpoint is the API path that returned the error.
	Endpoint string

	// Robot is the robot the request addressed, if any.
	Robot string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Robot != "" {
		return fmt.Sprintf("fleet [%s]: %s returned status %d", e.Robot, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("fleet: %s returned status %d", e.Endpoint, e.StatusCode)
}

// IsUnauthorized returns true if this is an authentication error (HTTP 401).
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsNotFound returns true if the robot or resource was not found (HTTP 404).
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}
