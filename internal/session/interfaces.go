package session

import (
	"io"

	"github.com/ytget/zip-uploader/internal/model"
)

// Sink opens save targets for downloaded results.
type Sink interface {
	// Open acquires a target for the given filename. The caller must release
	// it with exactly one of Commit or Discard.
	Open(name string) (Target, error)
}

// Target is a single acquired save destination.
type Target interface {
	io.Writer

	// Commit finalizes the written content and releases the target
	Commit() error

	// Discard abandons partial content and releases the target
	Discard() error

	// Location describes where the content ended up (path or URI)
	Location() string
}

// Notifier surfaces user-facing notices. Every validation failure and every
// request failure produces exactly one notice.
type Notifier interface {
	Notify(notice Notice)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notice)

// Notify calls f(notice)
func (f NotifierFunc) Notify(notice Notice) {
	f(notice)
}

// NoticeKind classifies a notice
type NoticeKind string

const (
	NoticeValidation NoticeKind = "validation"
	NoticeFailure    NoticeKind = "failure"
	NoticeSaved      NoticeKind = "saved"
)

// Operation names the user action a notice refers to
type Operation string

const (
	OperationSelect  Operation = "select"
	OperationUpload  Operation = "upload"
	OperationExample Operation = "example"
	OperationSave    Operation = "save"
)

// Notice is a single user-facing message
type Notice struct {
	Kind      NoticeKind
	Operation Operation
	Err       error
	Receipt   *Receipt // set for saved notices
}

// Snapshot is a read-only copy of the session state for rendering
type Snapshot struct {
	State       model.SessionState
	Busy        bool
	Selection   *model.Selection
	HasResult   bool
	ResultSize  int64
	ResultName  string
	LastRequest *model.Request
}
