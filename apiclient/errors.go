package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/articulink/admin-dashboard/internal/errors"
)

const (
	networkErrorMessage    = "Network error. Please check your connection."
	defaultErrorMessage    = "An error occurred"
	unexpectedErrorMessage = "An unexpected error occurred"
)

// APIError is a response from the backend with a non 2xx status other than the
// 401/403 handled by the interceptor.
type APIError struct {
	Status int
	// Detail is the backend's own message, empty when the body had none.
	Detail string
	// Message is Detail or a generic fallback.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// NetworkError means no response was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", apperrors.ErrNetwork, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{apperrors.ErrNetwork, e.Err}
}

// InvalidatedError is returned for 401 and 403 responses after the session has
// been cleared. Callers pass it up; the application shell turns it into a
// redirect to LoginURL.
type InvalidatedError struct {
	Invalidation
}

func (e *InvalidatedError) Error() string {
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Unwrap())
}

func (e *InvalidatedError) Unwrap() error {
	if e.Reason == ReasonAdminRequired {
		return apperrors.ErrAdminRequired
	}
	return apperrors.ErrSessionInvalid
}

// AsInvalidated extracts an InvalidatedError from an error chain.
func AsInvalidated(err error) (*InvalidatedError, bool) {
	var inv *InvalidatedError
	if apperrors.As(err, &inv) {
		return inv, true
	}
	return nil, false
}

// Message maps an error to the text shown to the user: the backend's detail
// verbatim, a connection hint when the backend was unreachable, or the error
// itself.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if apperrors.As(err, &apiErr) {
		return apiErr.Message
	}
	if apperrors.Is(err, apperrors.ErrNetwork) {
		return networkErrorMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return unexpectedErrorMessage
}

// errorBody is the FastAPI error envelope. detail is either a string or a list
// of validation problems.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationProblem struct {
	Msg string `json:"msg"`
}

func newAPIError(status int, body []byte) *APIError {
	detail := detailMessage(body)
	msg := detail
	if msg == "" {
		msg = defaultErrorMessage
	}
	return &APIError{Status: status, Detail: detail, Message: msg}
}

func detailMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}
	var problems []validationProblem
	if err := json.Unmarshal(eb.Detail, &problems); err == nil && len(problems) > 0 {
		msgs := make([]string, 0, len(problems))
		for _, p := range problems {
			if p.Msg != "" {
				msgs = append(msgs, p.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
