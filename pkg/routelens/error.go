package routelens

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError represents an HTTP error with a specific status code and message
type HTTPError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Details  any    `json:"details,omitempty"`
	Internal error  `json:"-"`
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("HTTP %d: %s: %v", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause
func (e *HTTPError) Unwrap() error {
	return e.Internal
}

// NewHTTPError creates a new HTTPError with the given status code and message.
// An empty message falls back to the status text.
func NewHTTPError(code int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	return &HTTPError{Code: code, Message: message}
}

// WithDetails attaches structured details
func (e *HTTPError) WithDetails(details any) *HTTPError {
	e.Details = details
	return e
}

// WithInternal attaches the underlying cause, which is never sent to clients
func (e *HTTPError) WithInternal(err error) *HTTPError {
	e.Internal = err
	return e
}

// ErrBadRequest creates a 400 Bad Request error
func ErrBadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

// ErrNotFound creates a 404 Not Found error
func ErrNotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

// ErrUnprocessableEntity creates a 422 Unprocessable Entity error
func ErrUnprocessableEntity(message string) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, message)
}

// ErrInternalServerError creates a 500 Internal Server Error
func ErrInternalServerError(message string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message)
}

// AsHTTPError converts any error into an HTTPError, defaulting to 500
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return ErrInternalServerError(http.StatusText(http.StatusInternalServerError)).WithInternal(err)
}
