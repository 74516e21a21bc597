package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
	"github.com/Black-And-White-Club/kart-bot/pkg/results"
)

// ErrorClasses are the sentinels a service wraps its domain errors in.
type ErrorClasses struct {
	Validation error
	NotFound   error
	Conflict   error
}

// StatusFor maps a service error to an HTTP status.
func StatusFor(err error, c ErrorClasses) int {
	switch {
	case c.Validation != nil && errors.Is(err, c.Validation):
		return http.StatusBadRequest
	case c.NotFound != nil && errors.Is(err, c.NotFound):
		return http.StatusNotFound
	case c.Conflict != nil && errors.Is(err, c.Conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteFailure replies with the status for err and its message. Errors that
// do not belong to any class are reported without detail.
func WriteFailure(w http.ResponseWriter, err error, c ErrorClasses) {
	status := StatusFor(err, c)
	if status == http.StatusInternalServerError {
		WriteError(w, status, http.StatusText(status))
		return
	}
	WriteError(w, status, err.Error())
}

// WriteResult replies with a service outcome. A non-nil err is an
// infrastructure failure and is logged; failure payloads map through c.
func WriteResult[S any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, result results.OperationResult[S, error], err error, status int, c ErrorClasses) {
	if err != nil {
		logger.ErrorContext(r.Context(), "Request failed",
			attr.String("method", r.Method),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	switch {
	case result.IsFailure():
		WriteFailure(w, *result.Failure, c)
	case result.IsSuccess():
		WriteJSON(w, status, *result.Success)
	default:
		WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
