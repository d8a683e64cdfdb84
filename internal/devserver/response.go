package devserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
)

const maxJSONBody = 1 << 20

type envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *envelopeError `json:"error,omitempty"`
	Message string         `json:"message,omitempty"`
}

type envelopeError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", slog.String("component", "devserver"), slog.String("error", err.Error()))
	}
}

// writeData answers with {success: true, data}
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeMessage answers with {success: true, message}
func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message})
}

// writeError answers with {success: false, error}
func writeError(w http.ResponseWriter, err error) {
	ae := classify(err)
	if ae.status >= 500 {
		slog.Error("internal error", slog.String("component", "devserver"), slog.String("error", err.Error()))
	}
	writeJSON(w, ae.status, envelope{
		Success: false,
		Error:   &envelopeError{Message: ae.message, Code: ae.code, Details: ae.details},
	})
}

// decodeJSON reads a bounded JSON request body into v
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return validationError("request body is required")
		}
		return validationError("invalid JSON body: %v", err)
	}
	return nil
}

// intQuery parses a non-negative integer query parameter
func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, validationError("%s must be a non-negative integer", name)
	}
	return n, nil
}
