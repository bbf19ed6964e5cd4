package errors

import (
	"errors"
	"fmt"
)

// Common error types for the API client
var (
	// Session errors
	ErrSessionExpired  = errors.New("session expired")
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrInvalidSession  = errors.New("invalid session")
	ErrNoRefreshToken  = errors.New("no refresh token")
	ErrRefreshRejected = errors.New("refresh rejected")
	ErrSessionChanged  = errors.New("session changed during refresh")

	// Request errors
	ErrTransport      = errors.New("transport failure")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrBadResponse    = errors.New("malformed response")
	ErrInvalidRequest = errors.New("invalid request")
	ErrBackend        = errors.New("backend error")

	// Endpoint table errors
	ErrUnknownOperation = errors.New("unknown operation")
	ErrMissingParam     = errors.New("missing path parameter")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
