package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/mkeskkula/haaldus/internal/observe"
)

// writeJSON encodes v as JSON and writes it with the given status code. On
// encoding failure it falls back to a plain-text 500 response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
	}
}

// writeError maps err through the taxonomy and writes the JSON error body.
// Server-side failures are logged with the trace-aware logger; client errors
// are the caller's problem and logged at debug only.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := asError(err)

	logger := observe.Logger(r.Context())
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", apiErr.Code, "err", err)
	} else {
		logger.Debug("request rejected", "code", apiErr.Code, "err", err)
	}

	writeJSON(w, apiErr.Status, apiErr)
}
