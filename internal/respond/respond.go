// Package respond writes JSON responses in the API's common shape.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is returned for every failed request.
type ErrorBody struct {
	Status int               `json:"status"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("respond: encode payload failed", "error", err)
	}
}

// Error writes an error body with the given status and message.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Status: status, Error: msg})
}

// FieldErrors writes a 400 with per-field messages.
func FieldErrors(w http.ResponseWriter, msg string, fields map[string]string) {
	JSON(w, http.StatusBadRequest, ErrorBody{Status: http.StatusBadRequest, Error: msg, Fields: fields})
}
