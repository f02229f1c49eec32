package tmdb

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid tmdb configuration")
	// ErrNetwork indicates the request did not produce a response
	ErrNetwork = errors.New("tmdb network error")
	// ErrDecode indicates the response did not match the expected schema
	ErrDecode = errors.New("tmdb decode error")
	// ErrAuth indicates a request token or session exchange was refused
	ErrAuth = errors.New("tmdb authentication failed")
	// ErrNotAuthenticated indicates an account operation without a session
	ErrNotAuthenticated = errors.New("not authenticated")
)

// APIError represents a non-2xx response from TMDB
type APIError struct {
	StatusCode    int
	Code          int    // TMDB's own status_code, 0 if the body had none
	StatusMessage string
	Path          string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusMessage == "" {
		return fmt.Sprintf("tmdb API error: %s: status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("tmdb API error: %s: status %d: %s", e.Path, e.StatusCode, e.StatusMessage)
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// decodeError wraps err as an ErrDecode for the given path.
func decodeError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
}

// IsAuthError reports whether err is an authentication problem the user can
// fix by signing in again.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuth) || errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsUnauthorized()
}

// IsNotFound reports whether err is a 404 from the service
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}
