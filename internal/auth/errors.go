package auth

import (
	"errors"
	"fmt"
)

// ErrSessionExpired indicates the device authorization session expired
// before the user approved it, either by the client's own deadline or by an
// expired_token response from the provider.
var ErrSessionExpired = errors.New("device authorization session expired")

// ErrAccessDenied indicates the user declined the authorization request.
var ErrAccessDenied = errors.New("access denied by user")

// AuthFailedError indicates a terminal authentication failure: a non-2xx
// response from the provider, an exhausted retry budget, or a storage
// failure that loses freshly obtained tokens.
type AuthFailedError struct {
	// Op names the failing operation (e.g. "discovery", "device flow", "refresh").
	Op string

	// Status is the HTTP status code, if the failure came from an HTTP
	// error response. Zero otherwise.
	Status int

	// Body is the provider's response body, kept for diagnostics.
	Body string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *AuthFailedError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s failed: HTTP %d: %s", e.Op, e.Status, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s failed", e.Op)
	}
}

// Unwrap returns the underlying error for error chain inspection.
func (e *AuthFailedError) Unwrap() error {
	return e.Err
}

// DecodeError indicates a malformed response body or token that could not
// be parsed. Decode failures are fatal and never retried.
type DecodeError struct {
	// Op names what was being decoded.
	Op string

	// Err is the underlying parse error.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsAuthFailed reports whether err is any terminal authentication failure,
// including denial and session expiry. Callers use this to decide whether
// starting over can help.
func IsAuthFailed(err error) bool {
	var authErr *AuthFailedError
	return errors.As(err, &authErr) ||
		errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, ErrSessionExpired)
}
