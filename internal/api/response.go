package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/erazemk/pisarna/internal/engine"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// engineError writes an engine validation failure, carrying the failure kind
// so the client can react to it, not just display it.
func engineError(w http.ResponseWriter, err *engine.Error) {
	status := http.StatusConflict
	switch err.Kind {
	case engine.KindUnknownEmployee, engine.KindUnknownItem, engine.KindUnknownIssue:
		status = http.StatusNotFound
	case engine.KindEmptyIssue, engine.KindInvalidQuantity, engine.KindEmptySignature:
		status = http.StatusBadRequest
	}
	jsonResponse(w, status, map[string]string{
		"error": err.Message,
		"kind":  string(err.Kind),
	})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
