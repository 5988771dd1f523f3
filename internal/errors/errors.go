// Package errors defines the domain error every service returns. An Error
// carries a machine code, the exact user-facing message and, for validation
// failures, the offending field:
//
//	return errors.InvalidField("star", "Star must be in between 0 to 5 stars.")
//
// The API layer reads Code to pick the HTTP status and copies Message into the
// response envelope unchanged.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeValidation         Code = "VALIDATION"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeForbidden          Code = "FORBIDDEN"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeInternal           Code = "INTERNAL"
)

var statusByCode = map[Code]int{
	CodeValidation:         http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeConflict:           http.StatusConflict,
	CodeForbidden:          http.StatusForbidden,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeRateLimited:        http.StatusTooManyRequests,
}

// HTTPStatus maps the code to a status; unknown codes are 500.
func (c Code) HTTPStatus() int {
	if status, ok := statusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a domain error.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same Code, so errors.Is(err, ErrNotFound)
// holds whatever the message.
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && t.Code == e.Code
}

// HTTPStatus is shorthand for e.Code.HTTPStatus().
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause returns a copy of e wrapping err. The message shown to clients is
// unchanged; the cause only reaches logs.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// Sentinels for errors.Is.
var (
	ErrValidation   = New(CodeValidation, "validation error")
	ErrNotFound     = New(CodeNotFound, "not found")
	ErrConflict     = New(CodeConflict, "conflict")
	ErrForbidden    = New(CodeForbidden, "forbidden")
	ErrUnauthorized = New(CodeUnauthorized, "unauthorized")
)

// FieldDetails names the request field that failed validation.
type FieldDetails struct {
	Field string `json:"field"`
}

// New creates an error with the given code.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// InvalidField is a validation failure attributed to one request field.
func InvalidField(field, msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: FieldDetails{Field: field}}
}

func NotFound(msg string) *Error           { return New(CodeNotFound, msg) }
func Conflict(msg string) *Error           { return New(CodeConflict, msg) }
func Forbidden(msg string) *Error          { return New(CodeForbidden, msg) }
func Unauthorized(msg string) *Error       { return New(CodeUnauthorized, msg) }
func InvalidCredentials(msg string) *Error { return New(CodeInvalidCredentials, msg) }
func RateLimited(msg string) *Error        { return New(CodeRateLimited, msg) }
func Internal(msg string) *Error           { return New(CodeInternal, msg) }

// CodeOf returns the code carried by err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}
