package crestron

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned when an authenticated call is attempted
// without a valid session. The dispatcher checks locally and never reaches
// the network in this case.
var ErrNotAuthenticated = errors.New("crestron: not authenticated or session expired, authenticate first")

// AuthError reports a failed login exchange: the controller rejected the
// token or the login call itself failed. A prior valid session, if any,
// is left untouched.
type AuthError struct {
	Host string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("crestron: authentication with %s failed: %v", e.Host, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RemoteError reports a non-2xx response from an authenticated call.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("crestron: remote returned status %d: %s", e.StatusCode, e.Body)
}

// TimeoutError reports that a call produced no response within the per-call
// bound. It is transient and distinct from authentication and remote-status
// errors; the caller decides whether to retry.
type TimeoutError struct {
	Endpoint string
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("crestron: request to %s timed out: %v", e.Endpoint, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// ValidationError reports caller-supplied input outside the contract
// (position out of 0-100, empty batch, non-positive id). No network call
// is attempted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "crestron: " + e.Msg
}
