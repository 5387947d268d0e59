package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	apperrors "github.com/jmgilman/go/errors"
	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

var (
	errEmptyRequestBody   = apperrors.New(apperrors.CodeInvalidInput, "empty request body")
	errInvalidRequestBody = apperrors.New(apperrors.CodeInvalidInput, "invalid request body")
	errValidation         = apperrors.New(apperrors.CodeInvalidInput, "validation error")
	errMappingNotFound    = apperrors.New(apperrors.CodeNotFound, "url not found")
)

// classify converts a use case failure into a platform error. fallback is the code of failures
// that carry no domain meaning.
func classify(err error, fallback apperrors.ErrorCode) apperrors.PlatformError {
	var platformErr apperrors.PlatformError
	if errors.As(err, &platformErr) {
		return platformErr
	}

	switch {
	case errors.Is(err, entity.ErrInvalidCode):
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "invalid short code")
	case errors.Is(err, entity.ErrInvalidContent):
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "invalid url")
	case errors.Is(err, entity.ErrInvalidRange):
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "invalid time range")
	case errors.Is(err, entity.ErrMappingNotFound):
		return apperrors.Wrap(err, apperrors.CodeNotFound, "url not found")
	case errors.Is(err, entity.ErrCodeGenerationExhausted):
		return apperrors.Wrap(err, apperrors.CodeUnavailable, "no free short code found, try again")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.CodeTimeout, "request timed out")
	case errors.Is(err, entity.ErrInternalConsistency):
		return apperrors.Wrap(err, apperrors.CodeInternal, "server error occurred")
	default:
		return apperrors.Wrap(err, fallback, "server error occurred")
	}
}

func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// renderError writes err as an errorResponse. Server side failures are attached to the request log.
func renderError(w http.ResponseWriter, r *http.Request, err error, fallback apperrors.ErrorCode, details ...validationError) {
	platformErr := classify(err, fallback)
	status := statusForCode(platformErr.Code())

	if status >= http.StatusInternalServerError {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
	}

	render.Status(r, status)
	render.JSON(w, r, errorResponse{
		Status:    statusError,
		Code:      string(platformErr.Code()),
		Message:   platformErr.Message(),
		Retryable: apperrors.IsRetryable(platformErr),
		TraceID:   middleware.GetReqID(r.Context()),
		Errors:    details,
	})
}

// renderPanic is the response of a recovered panic.
func renderPanic(w http.ResponseWriter, r *http.Request, err error) {
	renderError(w, r, apperrors.Wrap(err, apperrors.CodeInternal, "server error occurred"), apperrors.CodeInternal)
}
