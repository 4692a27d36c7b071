package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/kouichiii/paper-manager/internal/errors"
	"github.com/kouichiii/paper-manager/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with a consistent envelope.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status    int
	Code      string                    `json:"code" doc:"Machine-readable error code"`
	Message   string                    `json:"message" doc:"Human-readable error message"`
	Details   []domainerrors.FieldError `json:"details,omitempty" doc:"Field-level validation failures"`
	Path      string                    `json:"path" doc:"Request path that produced the error"`
	Timestamp string                    `json:"timestamp" doc:"Time the error was produced, ISO-8601"`
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

// RegisterErrorHandler configures huma to emit the domain error envelope.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewErrorWithContext = func(ctx huma.Context, status int, message string, errs ...error) huma.StatusError {
		path := ""
		if ctx != nil {
			path = ctx.URL().Path
		}
		timestamp := time.Now().UTC().Format(time.RFC3339)

		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return &APIError{
					status:    domainErr.HTTPStatus(),
					Code:      string(domainErr.Code),
					Message:   domainErr.Message,
					Details:   domainErr.Details,
					Path:      path,
					Timestamp: timestamp,
				}
			}

			// Catch storage errors that slipped past the service layer.
			if errors.Is(err, store.ErrNotFound) {
				return &APIError{
					status:    http.StatusNotFound,
					Code:      string(domainerrors.CodeNotFound),
					Message:   err.Error(),
					Path:      path,
					Timestamp: timestamp,
				}
			}
		}

		// Schema validation failures surface as 422 in huma; the contract
		// uses 400 for all malformed input.
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}

		return &APIError{
			status:    status,
			Code:      statusToCode(status),
			Message:   message,
			Details:   collectFieldErrors(errs),
			Path:      path,
			Timestamp: timestamp,
		}
	}
}

// collectFieldErrors converts huma schema validation details into field errors.
func collectFieldErrors(errs []error) []domainerrors.FieldError {
	var details []domainerrors.FieldError
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if errors.As(err, &detail) {
			details = append(details, domainerrors.FieldError{
				Field: strings.TrimPrefix(detail.Location, "body."),
				Error: detail.Message,
			})
		}
	}
	return details
}

// statusToCode maps HTTP status codes to domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(domainerrors.CodeValidation)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeAlreadyExists)
	default:
		return string(domainerrors.CodeInternal)
	}
}
