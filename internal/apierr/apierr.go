package apierr

import (
	"fmt"
	"net/http"
)

// Error is the failure type services return to handlers. Status and Code are
// part of the API contract; Err carries the internal cause for logging and is
// never serialized to the client for upstream failures.
type Error struct {
	Status  int
	Code    string
	Err     error
	Details interface{}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Unauthenticated(err error) *Error {
	return New(http.StatusUnauthorized, "unauthenticated", err)
}

func Forbidden(err error) *Error {
	return New(http.StatusForbidden, "forbidden", err)
}

func NotFound(code string, err error) *Error {
	return New(http.StatusNotFound, code, err)
}

func Conflict(code string, err error) *Error {
	return New(http.StatusConflict, code, err)
}

// Validation carries the ordered field violations in Details so the response
// mapper can attach them to the 400 body.
func Validation(details interface{}, err error) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "validation_failed", Err: err, Details: details}
}

// Upstream hides the internal cause from the client; the wrapped err is for
// server-side logs only.
func Upstream(err error) *Error {
	return New(http.StatusInternalServerError, "upstream_error", err)
}
