package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kind codes surfaced in the response envelope.
const (
	CodeNotEnrolled      = "NOT_ENROLLED"
	CodeDuplicateRequest = "DUPLICATE_REQUEST"
	CodeAlreadyReviewed  = "ALREADY_REVIEWED"
	CodeMissingReason    = "MISSING_REASON"
	CodeNotFound         = "NOT_FOUND"
	CodeForbidden        = "FORBIDDEN"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeValidation       = "VALIDATION"
	CodeStorage          = "STORAGE"
)

type Error struct {
	Status int
	Code   string
	Err    error
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

func NotEnrolled(format string, args ...interface{}) *Error {
	return New(http.StatusForbidden, CodeNotEnrolled, fmt.Errorf(format, args...))
}

func DuplicateRequest(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeDuplicateRequest, fmt.Errorf(format, args...))
}

func AlreadyReviewed(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeAlreadyReviewed, fmt.Errorf(format, args...))
}

func MissingReason(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeMissingReason, fmt.Errorf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func Forbidden(format string, args ...interface{}) *Error {
	return New(http.StatusForbidden, CodeForbidden, fmt.Errorf(format, args...))
}

func Unauthorized(format string, args ...interface{}) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, fmt.Errorf(format, args...))
}

func Validation(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

func Storage(err error) *Error {
	return New(http.StatusInternalServerError, CodeStorage, err)
}

// IsCode reports whether err wraps an *Error carrying the given code.
func IsCode(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// StatusOf returns the HTTP status for err, defaulting to 500 for
// anything that is not an *Error.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// CodeOf returns the envelope code for err, defaulting to STORAGE.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Code != "" {
		return ae.Code
	}
	return CodeStorage
}
