package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors shared across packages. AppError values wrap one of these
// so callers can branch with errors.Is without caring about the exact code.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternal       = errors.New("internal error")
	ErrBadGateway     = errors.New("upstream request failed")
	ErrGatewayTimeout = errors.New("upstream request timed out")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error with a resource specific code,
// e.g. NotFound("customer") yields CUSTOMER_NOT_FOUND.
func NotFound(resource string) *AppError {
	return &AppError{
		Code:    strings.ToUpper(strings.ReplaceAll(resource, " ", "_")) + "_NOT_FOUND",
		Message: resource + " not found",
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// MissingParameter creates a 400 error for an absent required parameter.
func MissingParameter(name string) *AppError {
	return &AppError{
		Code:    "MISSING_PARAMETER",
		Message: fmt.Sprintf("%s is required", name),
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error with the given code.
func Unauthorized(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Internal creates a 500 error. The wrapped cause is never shown to clients.
func Internal(code string, err error) *AppError {
	if code == "" {
		code = "INTERNAL_ERROR"
	}
	return &AppError{
		Code:    code,
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     errors.Join(ErrInternal, err),
	}
}

// Upstream classifies a failed call to a remote dependency. Deadline
// overruns become 504 REMOTE_TIMEOUT, everything else 502 REMOTE_FETCH_FAILURE.
func Upstream(dependency string, err error) *AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:    "REMOTE_TIMEOUT",
			Message: dependency + " did not respond in time",
			Status:  http.StatusGatewayTimeout,
			Err:     errors.Join(ErrGatewayTimeout, err),
		}
	}
	return &AppError{
		Code:    "REMOTE_FETCH_FAILURE",
		Message: "failed to fetch data from " + dependency,
		Status:  http.StatusBadGateway,
		Err:     errors.Join(ErrBadGateway, err),
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrGatewayTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrBadGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
