// Package response writes the JSON envelopes returned by the relay.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	apperrors "github.com/welldanyogia/webrana-contact-relay/internal/errors"
)

// MsgMethodNotAllowed is the body error for unsupported methods
const MsgMethodNotAllowed = "Method Not Allowed"

// SubmissionResponse is returned for every accepted submission.
// ID is null when nothing was sent.
type SubmissionResponse struct {
	OK bool    `json:"ok"`
	ID *string `json:"id"`
}

// ProbeResponse is returned by the liveness probe
type ProbeResponse struct {
	OK     bool    `json:"ok"`
	HasKey bool    `json:"hasKey"`
	To     *string `json:"to"`
}

// ErrorResponse represents an error API response. Code is only set for
// server-side failures.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	OK   bool        `json:"ok"`
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

// Meta contains pagination metadata
type Meta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// Sent returns 200 with the provider id, or a null id when empty
func Sent(c echo.Context, id string) error {
	resp := SubmissionResponse{OK: true}
	if id != "" {
		resp.ID = &id
	}
	return c.JSON(http.StatusOK, resp)
}

// Probe returns the configuration probe body
func Probe(c echo.Context, hasKey bool, to string) error {
	resp := ProbeResponse{OK: true, HasKey: hasKey}
	if to != "" {
		resp.To = &to
	}
	return c.JSON(http.StatusOK, resp)
}

// Success returns 200 with an arbitrary body
func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// Paginated returns a paginated response
func Paginated(c echo.Context, data interface{}, total int64, limit, offset int) error {
	return c.JSON(http.StatusOK, PaginatedResponse{
		OK:   true,
		Data: data,
		Meta: Meta{
			Total:  total,
			Limit:  limit,
			Offset: offset,
		},
	})
}

// Error returns an error response with the status derived from the
// error code. Client errors carry no code.
func Error(c echo.Context, err error) error {
	code := apperrors.GetErrorCode(err)
	status := apperrors.HTTPStatus(code)

	resp := ErrorResponse{OK: false, Error: err.Error()}
	if status >= http.StatusInternalServerError {
		resp.Code = code
	}
	return c.JSON(status, resp)
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// MethodNotAllowed returns 405 and advertises the allowed methods
func MethodNotAllowed(c echo.Context, allow string) error {
	c.Response().Header().Set(echo.HeaderAllow, allow)
	return c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: MsgMethodNotAllowed})
}

// Unauthorized returns a 401 response
func Unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: message})
}

// TooManyRequests returns a 429 response carrying CodeRateLimited
func TooManyRequests(c echo.Context, message string) error {
	return c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: message, Code: apperrors.CodeRateLimited})
}

// InternalError returns a 500 Internal Server Error response
func InternalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: message,
		Code:  apperrors.CodeInternalError,
	})
}

// NotFound returns a 404 Not Found response
func NotFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{Error: message})
}
