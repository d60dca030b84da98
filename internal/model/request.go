package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequestKind identifies which backend operation a request performed
type RequestKind string

const (
	RequestKindUpload  RequestKind = "upload"
	RequestKindExample RequestKind = "example"
)

// Request represents a single call to the processing backend
type Request struct {
	ID         string
	Kind       RequestKind
	Status     RequestStatus
	LastError  string    // last error message if any
	StartedAt  time.Time // when the request was sent
	FinishedAt time.Time // when the response (or failure) arrived
	Bytes      int64     // size of the received body
}

// NewRequest creates a pending request with a fresh ID
func NewRequest(kind RequestKind) *Request {
	return &Request{
		ID:     uuid.NewString(),
		Kind:   kind,
		Status: RequestStatusPending,
	}
}

// Start marks the request as running
func (r *Request) Start(now time.Time) {
	r.Status = RequestStatusRunning
	r.StartedAt = now
}

// Finish records the outcome of the request
func (r *Request) Finish(now time.Time, bytes int64, err error) {
	r.FinishedAt = now
	if err != nil {
		r.Status = RequestStatusError
		r.LastError = err.Error()
		return
	}
	r.Status = RequestStatusCompleted
	r.Bytes = bytes
}

// Duration returns how long the request took, zero while it is still active
func (r *Request) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// GetDurationString returns the duration formatted as mm:ss.t, or "—" if unknown
func (r *Request) GetDurationString() string {
	d := r.Duration()
	if d <= 0 {
		return "—"
	}

	minutes := int(d / time.Minute)
	seconds := (d % time.Minute).Seconds()
	return fmt.Sprintf("%02d:%04.1f", minutes, seconds)
}
