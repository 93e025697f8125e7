package httpapi

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"genai/internal/engine"
	"genai/internal/manager"
	"genai/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service and engine errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests
	case manager.IsDraining(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	switch engine.StatusCode(err) {
	case engine.CodeInvalidArgument, engine.CodeOutOfRange:
		return http.StatusBadRequest
	case engine.CodeNotFound:
		return http.StatusNotFound
	case engine.CodeFailedPrecondition:
		return http.StatusTooManyRequests
	case engine.CodeUnimplemented:
		return http.StatusNotImplemented
	case engine.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as a JSON payload with its mapped status.
func writeError(w http.ResponseWriter, err error) int {
	status := statusFor(err)
	if status == http.StatusTooManyRequests {
		reason := "engine"
		if manager.IsTooBusy(err) {
			reason = "admission"
		}
		IncrementBackpressure(reason)
	}
	resp := types.ErrorResponse{Error: err.Error(), Code: status, Status: int(engine.StatusCode(err))}
	writeJSON(w, status, resp)
	return status
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
