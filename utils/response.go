package utils

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Envelope is the uniform response wrapper used by every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type M map[string]interface{}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Success writes a success envelope with HTTP 200.
func Success(w http.ResponseWriter, message string, data any) {
	RespondWithJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// SuccessExtra writes a success envelope with sibling fields such as
// stats, pagination or count.
func SuccessExtra(w http.ResponseWriter, message string, data any, extra M) {
	resp := M{"success": true, "message": message, "data": data}
	for k, v := range extra {
		resp[k] = v
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// Fail writes a failure envelope. The HTTP status is inferred from the
// message text, matching the contract clients already depend on.
func Fail(w http.ResponseWriter, message string) {
	RespondWithJSON(w, StatusFromMessage(message), Envelope{Success: false, Message: message, Data: nil})
}

// Internal reports an unexpected error as a 500 failure envelope.
func Internal(w http.ResponseWriter, err error) {
	msg := "Internal server error"
	if err != nil {
		msg = err.Error()
	}
	RespondWithJSON(w, http.StatusInternalServerError, Envelope{Success: false, Message: msg, Data: nil})
}

// StatusFromMessage maps failure message keywords to HTTP status codes.
func StatusFromMessage(message string) int {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "not found"):
		return http.StatusNotFound
	case strings.Contains(m, "unauthorized"), strings.Contains(m, "invalid credentials"):
		return http.StatusUnauthorized
	case strings.Contains(m, "already exists"), strings.Contains(m, "duplicate"):
		return http.StatusConflict
	case strings.Contains(m, "forbidden"):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}
