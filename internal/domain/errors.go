package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for domain operations
var (
	// ErrItemNotFound indicates the requested media item does not exist
	ErrItemNotFound = errors.New("media item not found")

	// ErrAuthFailed indicates the server rejected the supplied credentials
	ErrAuthFailed = errors.New("authentication failed")

	// ErrInvalidRef indicates an item reference that cannot be parsed
	ErrInvalidRef = errors.New("invalid item reference")
)

// TransportError is a network-level failure talking to the server
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthenticationError is returned when the login endpoint answers non-2xx
type AuthenticationError struct {
	StatusCode int
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed with status %d", e.StatusCode)
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthFailed
}

// DecodeError is returned when a response body does not match the expected schema
type DecodeError struct {
	Target string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ConfigurationError reports an invalid configuration value
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// APIError is a non-2xx answer from a catalog endpoint
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d - %s", e.StatusCode, e.Body)
}

// IsUnauthorized reports a 401 that survived the token refresh
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports a 404
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) Is(target error) bool {
	return target == ErrItemNotFound && e.IsNotFound()
}
