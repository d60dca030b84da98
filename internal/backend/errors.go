package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrCircuitOpen is returned while the breaker refuses calls after repeated failures
	ErrCircuitOpen = errors.New("backend temporarily unavailable")

	// ErrResponseTooLarge is returned when the processed body exceeds the configured cap
	ErrResponseTooLarge = errors.New("backend response too large")
)

// maxErrorBody bounds how much of a failure body is kept for diagnostics
const maxErrorBody = 4 << 10

// StatusError is returned when the backend answers with a non-2xx status
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// IsServerError reports whether the failure came from the backend itself
// rather than from the request it was given
func (e *StatusError) IsServerError() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// Detail extracts the human-readable reason from a JSON error body of the
// form {"detail": "..."} or {"message": "..."}. It returns "" otherwise.
func (e *StatusError) Detail() string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err != nil {
		return ""
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil && detail != "" {
		return detail
	}
	return body.Message
}
