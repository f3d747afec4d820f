// Package errs defines the error shape returned to API clients.
//
// Every failure leaves the service as an HTTPError carrying a machine code,
// a message and the status. Internal details stay in the logs.
package errs

import (
	"net/http"
	"strings"
)

// FieldError is a single field-level validation failure
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the error body written to clients
type HTTPError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError so errors.Is(err, &HTTPError{}) detects the type
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e with Message replaced
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:    e.Code,
		Message: message,
		Status:  e.Status,
		Errors:  e.Errors,
	}
}

func newHTTPError(status int, message string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}

// NewBadRequestError creates a 400 error with optional field errors
func NewBadRequestError(message string, errors []FieldError) *HTTPError {
	e := newHTTPError(http.StatusBadRequest, message)
	e.Errors = errors
	return e
}

// NewValidationError creates a 400 error for a single invalid field
func NewValidationError(field, message string) *HTTPError {
	return NewBadRequestError("Validation failed", []FieldError{{Field: field, Error: message}})
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(message string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message)
}

// NewConflictError creates a 409 error with a custom code
func NewConflictError(message, code string) *HTTPError {
	e := newHTTPError(http.StatusConflict, message)
	if code != "" {
		e.Code = code
	}
	return e
}

// NewPayloadTooLargeError creates a 413 error
func NewPayloadTooLargeError(message string) *HTTPError {
	return newHTTPError(http.StatusRequestEntityTooLarge, message)
}

// NewUnsupportedMediaTypeError creates a 415 error
func NewUnsupportedMediaTypeError(message string) *HTTPError {
	return newHTTPError(http.StatusUnsupportedMediaType, message)
}

// NewTooManyRequestsError creates a 429 error
func NewTooManyRequestsError(message string) *HTTPError {
	return newHTTPError(http.StatusTooManyRequests, message)
}

// NewServiceUnavailableError creates a 503 error
func NewServiceUnavailableError(message string) *HTTPError {
	return newHTTPError(http.StatusServiceUnavailable, message)
}

// NewInternalServerError creates a 500 error with the generic status text.
// The underlying cause is never attached.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
