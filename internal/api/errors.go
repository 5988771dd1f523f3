package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	domainerrors "github.com/vivilio/vivilio-server/internal/errors"
)

// APIError is the huma.StatusError every failed operation is turned into.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

const internalErrorMessage = "Internal server error."

// RegisterErrorHandler replaces huma.NewError so that domain errors keep
// their status, code and message, and huma's request validation failures
// come out as a single 400 VALIDATION error naming the first bad field.
// Call it before registering routes.
func RegisterErrorHandler(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return fromDomainError(domainErr)
			}
		}

		if status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
			return validationError(message, errs)
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "status", status, "error", errors.Join(errs...))
			message = internalErrorMessage
		}

		return &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
	}
}

func fromDomainError(err *domainerrors.Error) *APIError {
	return &APIError{
		status:  err.HTTPStatus(),
		Code:    string(err.Code),
		Message: err.Message,
		Details: err.Details,
	}
}

// validationError keeps only the first schema failure huma reported.
func validationError(message string, errs []error) *APIError {
	apiErr := &APIError{
		status:  http.StatusBadRequest,
		Code:    string(domainerrors.CodeValidation),
		Message: message,
	}

	for _, err := range errs {
		var detail *huma.ErrorDetail
		if errors.As(err, &detail) {
			apiErr.Message = detail.Message
			if field := fieldFromLocation(detail.Location); field != "" {
				apiErr.Details = domainerrors.FieldDetails{Field: field}
			}
			break
		}
	}
	return apiErr
}

// fieldFromLocation turns "body.restrict_posting" into "restrict_posting".
func fieldFromLocation(location string) string {
	for _, prefix := range []string{"body.", "query.", "path.", "header."} {
		if rest, ok := strings.CutPrefix(location, prefix); ok {
			return rest
		}
	}
	if location == "body" {
		return ""
	}
	return location
}

// statusToCode maps HTTP statuses huma produces on its own to error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}
