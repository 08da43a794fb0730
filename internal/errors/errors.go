package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session keeper
var (
	// Grant and record errors
	ErrMalformedGrant      = errors.New("malformed grant")
	ErrMalformedRecord     = errors.New("malformed credential record")
	ErrMissingRefreshToken = errors.New("refresh token not set")

	// Token exchange errors
	ErrExchangeTransport = errors.New("token exchange transport failure")
	ErrExchangeRejected  = errors.New("token exchange rejected")
	ErrRefreshFailed     = errors.New("refresh access token failed")

	// Session errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidSessionToken = errors.New("invalid session token")

	// Configuration errors
	ErrMissingConfig = errors.New("missing configuration")
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

// Join returns an error that wraps the given errors
func Join(errs ...error) error {
	return errors.Join(errs...)
}
