package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain-specific error types
var (
	// ErrInvalidInput indicates the submission failed presence or shape validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrMethodNotAllowed indicates the endpoint was called with an unsupported method
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrMisconfigured indicates required provider configuration is missing
	ErrMisconfigured = errors.New("server misconfigured")

	// ErrProvider indicates the email provider rejected or failed the send
	ErrProvider = errors.New("email provider failure")

	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates unauthorized access
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the caller exceeded the submission rate
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal server error")
)

// Error codes for API responses
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeMisconfigured    = "MISCONFIGURED"
	CodeProviderError    = "PROVIDER_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// AppError represents an application error with context
type AppError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// ProviderError is the structured failure an email provider returns:
// a machine-readable kind plus human-readable text.
type ProviderError struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return e.Message
}

// Unwrap lets errors.Is match ErrProvider
func (e *ProviderError) Unwrap() error {
	return ErrProvider
}

// NewProviderError creates a ProviderError
func NewProviderError(name, message string) *ProviderError {
	return &ProviderError{Name: name, Message: message}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsMisconfigured checks if the error is a server misconfiguration
func IsMisconfigured(err error) bool {
	return errors.Is(err, ErrMisconfigured)
}

// GetProviderError extracts a ProviderError from an error chain
func GetProviderError(err error) *ProviderError {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr
	}
	return nil
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}

	switch {
	case IsInvalidInput(err):
		return CodeInvalidInput
	case errors.Is(err, ErrMethodNotAllowed):
		return CodeMethodNotAllowed
	case IsMisconfigured(err):
		return CodeMisconfigured
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrProvider):
		if providerErr := GetProviderError(err); providerErr != nil && providerErr.Name != "" {
			return providerErr.Name
		}
		return CodeProviderError
	default:
		return CodeInternalError
	}
}

// HTTPStatus maps error codes to HTTP status codes. Provider names are
// free-form, so anything unknown is a server-side failure.
func HTTPStatus(code string) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// FromPanic converts a recovered panic value into an error so it can be
// normalized exactly like a returned one.
func FromPanic(v any) error {
	switch p := v.(type) {
	case nil:
		return nil
	case error:
		return p
	case string:
		return errors.New(p)
	default:
		return fmt.Errorf("%v", p)
	}
}
