package model

import "time"

// DefaultResultName is used when a result is saved without a selection
const DefaultResultName = "processed.zip"

// ProcessedPrefix is prepended to the selection name when saving a result
const ProcessedPrefix = "processed_"

// Result is the opaque payload returned by the backend, pending download
type Result struct {
	Data        []byte
	Source      RequestKind
	ContentType string
	RequestID   string
	ReceivedAt  time.Time
}

// Size returns the payload length in bytes
func (r *Result) Size() int64 {
	return int64(len(r.Data))
}

// DownloadName returns the filename a result is saved under. A selection
// always wins, even for a result produced by the example request.
func DownloadName(selection *Selection) string {
	if selection == nil || selection.Name == "" {
		return DefaultResultName
	}
	return ProcessedPrefix + selection.Name
}
