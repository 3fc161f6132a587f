package errors

import (
	"errors"
	"fmt"
)

// Common error types for the admin dashboard
var (
	// Session errors
	ErrSessionInvalid   = errors.New("session invalidated")
	ErrAdminRequired    = errors.New("admin access required")
	ErrSubmitInProgress = errors.New("submission already in progress")

	// Transport errors
	ErrNetwork  = errors.New("network error")
	ErrDecoding = errors.New("unable to decode response")

	// Validation errors
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrMissingPassword = errors.New("password is required")
	ErrInvalidRequest  = errors.New("invalid request")

	// Storage errors
	ErrStorage = errors.New("session storage failure")

	// General errors
	ErrNotFound = errors.New("not found")
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

// New is errors.New, re-exported so callers need a single errors import.
func New(text string) error {
	return errors.New(text)
}
