package platform

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is returned when the backend rejects the bearer
// token. It is the sole trigger for the session-expiry recovery flow;
// callers detect it with errors.Is.
var ErrSessionExpired = errors.New("platform session expired")

// ErrBackendUnavailable is returned when the circuit breaker is open or
// the backend cannot be reached.
var ErrBackendUnavailable = errors.New("platform backend unavailable")

// APIError carries a non-401 backend error response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("platform api: %s (%s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("platform api: status %d", e.Status)
}

// IsInvalidCredentials reports whether the backend rejected a login or
// PIN attempt.
func IsInvalidCredentials(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.Code == "invalid_credentials" || apiErr.Code == "invalid_pin")
}
