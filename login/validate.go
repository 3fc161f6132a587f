package login

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/articulink/admin-dashboard/internal/errors"
)

// Only the local@domain.tld shape is checked; the backend has the final say.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError blocks a submission before any request is made.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Message is the text shown next to the form.
func (e *ValidationError) Message() string {
	switch {
	case apperrors.Is(e.Err, apperrors.ErrInvalidEmail):
		return "Please enter a valid email address"
	case apperrors.Is(e.Err, apperrors.ErrMissingPassword):
		return "Please enter your password"
	default:
		return e.Err.Error()
	}
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return &ValidationError{Field: "email", Err: apperrors.ErrInvalidEmail}
	}
	return nil
}

// Validate checks both fields, email first.
func Validate(email, password string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return &ValidationError{Field: "password", Err: apperrors.ErrMissingPassword}
	}
	return nil
}
