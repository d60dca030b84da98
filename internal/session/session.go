package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/ytget/zip-uploader/internal/backend"
	"github.com/ytget/zip-uploader/internal/model"
)

// MaxFileSize is the largest selection accepted for upload (10 MiB)
const MaxFileSize int64 = 10 * 1024 * 1024

var (
	// ErrBusy is returned while another request is in flight
	ErrBusy = errors.New("a request is already in progress")

	// ErrFileTooLarge is returned when a selection exceeds MaxFileSize
	ErrFileTooLarge = errors.New("file exceeds the maximum size")

	// ErrNoSelection is returned by Upload before any file was selected
	ErrNoSelection = errors.New("no file selected")

	// errNoPayload guards against a processor returning neither data nor error
	errNoPayload = errors.New("backend returned no payload")
)

// Receipt describes a saved result
type Receipt struct {
	Name     string
	Location string
	Bytes    int64
}

// Session is the uploader's state holder and controller
type Session struct {
	mu sync.Mutex

	processor backend.Processor
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
	example   string

	state       model.SessionState
	selection   *model.Selection
	result      *model.Result
	lastRequest *model.Request

	onUpdate func(Snapshot) // callback for UI updates
}

// Option configures a Session
type Option func(*Session)

// WithNotifier routes user-facing notices
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithLogger sets the session logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock overrides time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithExample overrides the literal sent by FetchExample
func WithExample(example string) Option {
	return func(s *Session) { s.example = example }
}

// New creates a session in the Idle state
func New(processor backend.Processor, opts ...Option) *Session {
	s := &Session{
		processor: processor,
		notifier:  NotifierFunc(func(Notice) {}),
		logger:    zap.NewNop(),
		now:       time.Now,
		example:   backend.DefaultExample,
		state:     model.SessionStateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("session")
	return s
}

// SetUpdateCallback sets the callback invoked after every state change
func (s *Session) SetUpdateCallback(callback func(Snapshot)) {
	s.mu.Lock()
	s.onUpdate = callback
	s.mu.Unlock()
}

// SetNotifier replaces the notice sink
func (s *Session) SetNotifier(n Notifier) {
	s.mu.Lock()
	s.notifier = n
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Result returns the current result, nil before any successful request.
// The returned value must not be modified.
func (s *Session) Result() *model.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Busy reports whether a request is in flight
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsBusy()
}

// Select validates and stores the file chosen by the user. An oversize file
// raises a validation notice and leaves the previous selection in place.
func (s *Session) Select(sel *model.Selection) error {
	if sel == nil {
		return ErrNoSelection
	}

	if sel.Size > MaxFileSize {
		err := fmt.Errorf("%w: %s is %s, the limit is %s",
			ErrFileTooLarge, sel.Name, humanize.IBytes(uint64(sel.Size)), humanize.IBytes(uint64(MaxFileSize)))
		s.logger.Info("selection rejected", zap.String("name", sel.Name), zap.Int64("size", sel.Size))
		s.notify(Notice{Kind: NoticeValidation, Operation: OperationSelect, Err: err})
		return err
	}

	s.mu.Lock()
	if s.state.IsBusy() {
		s.mu.Unlock()
		return ErrBusy
	}
	s.selection = sel
	s.state = model.SessionStateSelected
	s.mu.Unlock()

	s.logger.Info("file selected",
		zap.String("name", sel.Name),
		zap.String("path", sel.Path),
		zap.Int64("size", sel.Size))
	s.notifyUpdate()
	return nil
}

// Upload sends the current selection for processing and stores the result
func (s *Session) Upload(ctx context.Context) (err error) {
	sel, req, prev, err := s.begin(model.RequestKindUpload)
	if err != nil {
		return err
	}

	var payload *backend.Payload
	defer func() {
		err = s.finish(req, prev, payload, err)
	}()

	content, err := sel.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", sel.Name, err)
	}
	defer content.Close()

	payload, err = s.processor.UploadZip(ctx, req.ID, sel.Name, content)
	return err
}

// FetchExample requests the canned example result
func (s *Session) FetchExample(ctx context.Context) (err error) {
	_, req, prev, err := s.begin(model.RequestKindExample)
	if err != nil {
		return err
	}

	var payload *backend.Payload
	defer func() {
		err = s.finish(req, prev, payload, err)
	}()

	payload, err = s.processor.FetchExample(ctx, req.ID, s.example)
	return err
}

// Download writes the current result into a target opened from sink. With no
// result it does nothing and returns a nil receipt.
func (s *Session) Download(sink Sink) (*Receipt, error) {
	s.mu.Lock()
	result := s.result
	name := model.DownloadName(s.selection)
	s.mu.Unlock()

	if result == nil {
		return nil, nil
	}

	receipt, err := save(sink, name, result.Data)
	if err != nil {
		s.reportFailure(OperationSave, "", err)
		return nil, err
	}

	s.logger.Info("result saved",
		zap.String("name", receipt.Name),
		zap.String("location", receipt.Location),
		zap.Int64("bytes", receipt.Bytes))
	s.notify(Notice{Kind: NoticeSaved, Operation: OperationSave, Receipt: receipt})
	return receipt, nil
}

// save acquires a target right before writing and releases it on every path
func save(sink Sink, name string, data []byte) (*Receipt, error) {
	target, err := sink.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for writing: %w", name, err)
	}

	released := false
	defer func() {
		if !released {
			_ = target.Discard()
		}
	}()

	written, err := io.Copy(target, bytes.NewReader(data))
	if err != nil {
		released = true
		return nil, errors.Join(fmt.Errorf("failed to write %s: %w", name, err), target.Discard())
	}

	released = true
	if err := target.Commit(); err != nil {
		return nil, fmt.Errorf("failed to finalize %s: %w", name, err)
	}

	return &Receipt{Name: name, Location: target.Location(), Bytes: written}, nil
}

// begin moves the session into a busy state for the given request kind
func (s *Session) begin(kind model.RequestKind) (*model.Selection, *model.Request, model.SessionState, error) {
	s.mu.Lock()
	if s.state.IsBusy() {
		s.mu.Unlock()
		s.logger.Debug("request refused while busy", zap.String("kind", string(kind)))
		return nil, nil, "", ErrBusy
	}

	sel := s.selection
	if kind == model.RequestKindUpload && sel == nil {
		s.mu.Unlock()
		s.notify(Notice{Kind: NoticeValidation, Operation: OperationUpload, Err: ErrNoSelection})
		return nil, nil, "", ErrNoSelection
	}

	prev := s.state
	if kind == model.RequestKindUpload {
		s.state = model.SessionStateUploading
	} else {
		s.state = model.SessionStateFetchingExample
	}

	req := model.NewRequest(kind)
	req.Start(s.now())
	s.lastRequest = req
	s.mu.Unlock()

	s.logger.Info("request started", zap.String("kind", string(kind)), zap.String("request_id", req.ID))
	s.notifyUpdate()
	return sel, req, prev, nil
}

// finish clears the busy state unconditionally and records the outcome
func (s *Session) finish(req *model.Request, prev model.SessionState, payload *backend.Payload, err error) error {
	if err == nil && payload == nil {
		err = errNoPayload
	}

	s.mu.Lock()
	if err != nil {
		req.Finish(s.now(), 0, err)
		s.state = prev
	} else {
		req.Finish(s.now(), int64(len(payload.Data)), nil)
		s.result = &model.Result{
			Data:        payload.Data,
			Source:      req.Kind,
			ContentType: payload.ContentType,
			RequestID:   req.ID,
			ReceivedAt:  req.FinishedAt,
		}
		s.state = model.SessionStateReady
	}
	s.mu.Unlock()

	s.notifyUpdate()

	if err != nil {
		op := OperationUpload
		if req.Kind == model.RequestKindExample {
			op = OperationExample
		}
		s.reportFailure(op, req.ID, err)
		return err
	}

	s.logger.Info("request completed",
		zap.String("kind", string(req.Kind)),
		zap.String("request_id", req.ID),
		zap.Int64("bytes", req.Bytes),
		zap.Duration("elapsed", req.Duration()))
	return nil
}

// reportFailure is the single failure path shared by every operation
func (s *Session) reportFailure(op Operation, requestID string, err error) {
	if errors.Is(err, context.Canceled) {
		s.logger.Info("operation canceled", zap.String("operation", string(op)), zap.String("request_id", requestID))
		return
	}

	fields := []zap.Field{
		zap.String("operation", string(op)),
		zap.String("request_id", requestID),
		zap.Error(err),
	}
	if reporter, ok := s.processor.(backend.CircuitReporter); ok {
		fields = append(fields, zap.String("circuit_state", reporter.CircuitState()))
	}
	s.logger.Error("operation failed", fields...)
	s.notify(Notice{Kind: NoticeFailure, Operation: op, Err: err})
}

// notify hands a notice to the current notifier
func (s *Session) notify(n Notice) {
	s.mu.Lock()
	notifier := s.notifier
	s.mu.Unlock()

	if notifier != nil {
		notifier.Notify(n)
	}
}

// snapshotLocked builds a Snapshot; s.mu must be held
func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:     s.state,
		Busy:      s.state.IsBusy(),
		Selection: s.selection,
	}
	if s.result != nil {
		snap.HasResult = true
		snap.ResultSize = s.result.Size()
		snap.ResultName = model.DownloadName(s.selection)
	}
	if s.lastRequest != nil {
		req := *s.lastRequest
		snap.LastRequest = &req
	}
	return snap
}

// notifyUpdate calls the update callback if set
func (s *Session) notifyUpdate() {
	s.mu.Lock()
	callback := s.onUpdate
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if callback != nil {
		callback(snap)
	}
}
