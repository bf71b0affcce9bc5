// Package httpx provides HTTP response utilities.
package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// TimestampFormat matches the millisecond ISO-8601 stamps clients already parse.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrorBody is the JSON error payload returned by every endpoint.
type ErrorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends an ErrorBody stamped with the current time.
func Error(w http.ResponseWriter, status int, title, message string) {
	JSON(w, status, ErrorBody{
		Error:     title,
		Message:   message,
		Timestamp: Now(),
	})
}

// Now formats the current UTC time for payloads.
func Now() string {
	return time.Now().UTC().Format(TimestampFormat)
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
