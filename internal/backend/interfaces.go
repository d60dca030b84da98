package backend

import (
	"context"
	"io"
)

// Processor defines the interface for the processing backend.
type Processor interface {
	// UploadZip sends an archive as multipart field "file" and returns the processed body
	UploadZip(ctx context.Context, requestID, filename string, content io.Reader) (*Payload, error)

	// FetchExample asks the backend for a canned processed archive
	FetchExample(ctx context.Context, requestID, example string) (*Payload, error)
}

// CircuitReporter is implemented by processors guarded by a circuit breaker
type CircuitReporter interface {
	CircuitState() string
}

var (
	_ Processor       = (*Client)(nil)
	_ CircuitReporter = (*Client)(nil)
)
