package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mkeskkula/haaldus/internal/catalog"
	"github.com/mkeskkula/haaldus/pkg/provider/asr"
)

// Error is an HTTP-mappable error. Code is a stable machine-readable key;
// Message is human-readable. The taxonomy separates "fix your request"
// (4xx) from "retry later" (503) and "the backend failed" (502).
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`

	// cause is preserved for logs but never serialised to clients.
	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// badRequest is a client input error: missing field, unknown level, and so on.
func badRequest(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "invalid_request", Message: fmt.Sprintf(format, args...)}
}

// unauthorized is returned when no valid bearer token accompanies a request
// to an authenticated endpoint.
func unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "unauthorized", Message: msg}
}

// unavailable means a dependency is down or not configured; the client should
// retry later without changing the request.
func unavailable(msg string, cause error) *Error {
	return &Error{Status: http.StatusServiceUnavailable, Code: "service_unavailable", Message: msg, cause: cause}
}

// upstream is a transient processing failure in a reachable backend.
func upstream(msg string, cause error) *Error {
	return &Error{Status: http.StatusBadGateway, Code: "processing_failed", Message: msg, cause: cause}
}

// internal covers everything the taxonomy has no better name for.
func internal(cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "internal", Message: "internal server error", cause: cause}
}

// asError maps any error to the response taxonomy. Typed [Error] values pass
// through; known sentinels get their canonical status; anything else is a 500.
func asError(err error) *Error {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, catalog.ErrUnknownLevel), errors.Is(err, catalog.ErrUnknownCategory):
		return &Error{Status: http.StatusBadRequest, Code: "invalid_request", Message: err.Error(), cause: err}
	case errors.Is(err, asr.ErrUnavailable):
		return unavailable("transcription backend unavailable, retry later", err)
	default:
		return internal(err)
	}
}
