package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ytget/zip-uploader/internal/backend"
	"github.com/ytget/zip-uploader/internal/model"
)

// fakeProcessor records calls and returns canned responses
type fakeProcessor struct {
	mu sync.Mutex

	uploadPayload  *backend.Payload
	uploadErr      error
	examplePayload *backend.Payload
	exampleErr     error

	uploads       int
	examples      int
	lastFilename  string
	lastContent   []byte
	lastExample   string
	lastRequestID string

	// block, when set, holds calls until it is closed
	block   chan struct{}
	started chan struct{}
}

func (f *fakeProcessor) UploadZip(ctx context.Context, requestID, filename string, content io.Reader) (*backend.Payload, error) {
	data, _ := io.ReadAll(content)
	f.mu.Lock()
	f.uploads++
	f.lastFilename = filename
	f.lastContent = data
	f.lastRequestID = requestID
	f.mu.Unlock()
	f.wait()
	return f.uploadPayload, f.uploadErr
}

func (f *fakeProcessor) FetchExample(ctx context.Context, requestID, example string) (*backend.Payload, error) {
	f.mu.Lock()
	f.examples++
	f.lastExample = example
	f.lastRequestID = requestID
	f.mu.Unlock()
	f.wait()
	return f.examplePayload, f.exampleErr
}

func (f *fakeProcessor) wait() {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
}

// recordingNotifier collects notices
type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recordingNotifier) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) kinds() []NoticeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]NoticeKind, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.Kind)
	}
	return out
}

// memorySink keeps saved files in memory
type memorySink struct {
	files     map[string][]byte
	openErr   error
	writeErr  error
	opened    int
	committed int
	discarded int
}

func newMemorySink() *memorySink {
	return &memorySink{files: make(map[string][]byte)}
}

func (m *memorySink) Open(name string) (Target, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.opened++
	return &memoryTarget{sink: m, name: name}, nil
}

type memoryTarget struct {
	sink *memorySink
	name string
	buf  bytes.Buffer
}

func (t *memoryTarget) Write(p []byte) (int, error) {
	if t.sink.writeErr != nil {
		return 0, t.sink.writeErr
	}
	return t.buf.Write(p)
}

func (t *memoryTarget) Commit() error {
	t.sink.committed++
	t.sink.files[t.name] = t.buf.Bytes()
	return nil
}

func (t *memoryTarget) Discard() error {
	t.sink.discarded++
	return nil
}

func (t *memoryTarget) Location() string {
	return "memory://" + t.name
}

func newTestSession(t *testing.T, p backend.Processor) (*Session, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	s := New(p, WithNotifier(n), WithLogger(zaptest.NewLogger(t)))
	return s, n
}

func okPayload(data string) *backend.Payload {
	return &backend.Payload{Data: []byte(data), ContentType: "application/zip", StatusCode: http.StatusOK}
}

func TestNew_StartsIdle(t *testing.T) {
	s, _ := newTestSession(t, &fakeProcessor{})

	snap := s.Snapshot()
	assert.Equal(t, model.SessionStateIdle, snap.State)
	assert.False(t, snap.Busy)
	assert.Nil(t, snap.Selection)
	assert.False(t, snap.HasResult)
	assert.Nil(t, s.Result())
}

func TestSelect_AcceptsUpToLimit(t *testing.T) {
	sizes := []int64{0, 1, 5 * 1024 * 1024, MaxFileSize}

	for _, size := range sizes {
		s, n := newTestSession(t, &fakeProcessor{})
		sel := model.NewSelection("archive.zip", size, nil)

		require.NoError(t, s.Select(sel), "size %d", size)

		snap := s.Snapshot()
		assert.Equal(t, model.SessionStateSelected, snap.State)
		assert.Same(t, sel, snap.Selection)
		assert.Empty(t, n.kinds())
	}
}

func TestSelect_RejectsOversize(t *testing.T) {
	s, n := newTestSession(t, &fakeProcessor{})

	err := s.Select(model.NewSelection("big.zip", MaxFileSize+1, nil))
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Contains(t, err.Error(), "10 MiB")

	snap := s.Snapshot()
	assert.Equal(t, model.SessionStateIdle, snap.State)
	assert.Nil(t, snap.Selection)
	assert.Equal(t, []NoticeKind{NoticeValidation}, n.kinds())
}

func TestSelect_OversizeKeepsPreviousSelection(t *testing.T) {
	p := &fakeProcessor{}
	s, _ := newTestSession(t, p)

	first := model.NewSelectionFromBytes("first.zip", []byte("ok"))
	require.NoError(t, s.Select(first))

	err := s.Select(model.NewSelection("huge.zip", 15*1024*1024, nil))
	require.ErrorIs(t, err, ErrFileTooLarge)

	assert.Same(t, first, s.Snapshot().Selection)
	assert.Zero(t, p.uploads, "validation must not reach the network")
}

func TestUpload_Success(t *testing.T) {
	p := &fakeProcessor{uploadPayload: okPayload("processed")}
	s, n := newTestSession(t, p)

	var updates []Snapshot
	s.SetUpdateCallback(func(snap Snapshot) { updates = append(updates, snap) })

	require.NoError(t, s.Select(model.NewSelectionFromBytes("data.zip", []byte("raw"))))
	require.NoError(t, s.Upload(context.Background()))

	assert.Equal(t, "data.zip", p.lastFilename)
	assert.Equal(t, []byte("raw"), p.lastContent)
	assert.NotEmpty(t, p.lastRequestID)

	snap := s.Snapshot()
	assert.Equal(t, model.SessionStateReady, snap.State)
	assert.False(t, snap.Busy)
	assert.True(t, snap.HasResult)
	assert.Equal(t, int64(len("processed")), snap.ResultSize)
	assert.Equal(t, "processed_data.zip", snap.ResultName)
	require.NotNil(t, snap.LastRequest)
	assert.Equal(t, model.RequestStatusCompleted, snap.LastRequest.Status)
	assert.Equal(t, p.lastRequestID, snap.LastRequest.ID)

	result := s.Result()
	require.NotNil(t, result)
	assert.Equal(t, model.RequestKindUpload, result.Source)
	assert.Equal(t, p.lastRequestID, result.RequestID)
	assert.Empty(t, n.kinds())

	// select, busy, ready
	require.Len(t, updates, 3)
	assert.True(t, updates[1].Busy)
	assert.Equal(t, model.SessionStateUploading, updates[1].State)
	assert.False(t, updates[2].Busy)
}

func TestUpload_WithoutSelection(t *testing.T) {
	p := &fakeProcessor{uploadPayload: okPayload("x")}
	s, n := newTestSession(t, p)

	err := s.Upload(context.Background())
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Zero(t, p.uploads)
	assert.False(t, s.Busy())
	assert.Equal(t, []NoticeKind{NoticeValidation}, n.kinds())
}

func TestUpload_FailureClearsBusyAndReportsOnce(t *testing.T) {
	p := &fakeProcessor{uploadErr: &backend.StatusError{Endpoint: backend.UploadPath, StatusCode: http.StatusInternalServerError}}
	s, n := newTestSession(t, p)

	require.NoError(t, s.Select(model.NewSelectionFromBytes("data.zip", []byte("raw"))))
	err := s.Upload(context.Background())

	var statusErr *backend.StatusError
	require.True(t, errors.As(err, &statusErr))

	snap := s.Snapshot()
	assert.False(t, snap.Busy)
	assert.Equal(t, model.SessionStateSelected, snap.State, "failure returns to the pre-call state")
	assert.False(t, snap.HasResult)
	assert.Equal(t, model.RequestStatusError, snap.LastRequest.Status)

	require.Equal(t, []NoticeKind{NoticeFailure}, n.kinds())
	assert.Equal(t, OperationUpload, n.notices[0].Operation)
}

func TestUpload_OpenFailure(t *testing.T) {
	p := &fakeProcessor{uploadPayload: okPayload("x")}
	s, n := newTestSession(t, p)

	sel := model.NewSelection("gone.zip", 3, func() (io.ReadCloser, error) {
		return nil, errors.New("file vanished")
	})
	require.NoError(t, s.Select(sel))

	err := s.Upload(context.Background())
	assert.ErrorContains(t, err, "file vanished")
	assert.Zero(t, p.uploads)
	assert.False(t, s.Busy())
	assert.Equal(t, []NoticeKind{NoticeFailure}, n.kinds())
}

func TestUpload_NilPayloadIsFailure(t *testing.T) {
	p := &fakeProcessor{}
	s, _ := newTestSession(t, p)

	require.NoError(t, s.Select(model.NewSelectionFromBytes("a.zip", nil)))
	assert.ErrorIs(t, s.Upload(context.Background()), errNoPayload)
	assert.Nil(t, s.Result())
}

func TestUpload_FailureKeepsEarlierResult(t *testing.T) {
	p := &fakeProcessor{uploadPayload: okPayload("first")}
	s, _ := newTestSession(t, p)

	require.NoError(t, s.Select(model.NewSelectionFromBytes("a.zip", nil)))
	require.NoError(t, s.Upload(context.Background()))

	p.uploadPayload = nil
	p.uploadErr = errors.New("connection refused")
	require.Error(t, s.Upload(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, model.SessionStateReady, snap.State)
	assert.Equal(t, []byte("first"), s.Result().Data)
}

func TestUpload_CanceledIsNotNotified(t *testing.T) {
	p := &fakeProcessor{uploadErr: context.Canceled}
	s, n := newTestSession(t, p)

	require.NoError(t, s.Select(model.NewSelectionFromBytes("a.zip", nil)))
	assert.ErrorIs(t, s.Upload(context.Background()), context.Canceled)
	assert.Empty(t, n.kinds())
	assert.False(t, s.Busy())
}

func TestFetchExample_Success(t *testing.T) {
	p := &fakeProcessor{examplePayload: okPayload("example")}
	s, n := newTestSession(t, p)

	require.NoError(t, s.FetchExample(context.Background()))

	assert.Equal(t, "first", p.lastExample)
	snap := s.Snapshot()
	assert.Equal(t, model.SessionStateReady, snap.State)
	assert.Equal(t, "processed.zip", snap.ResultName)
	assert.Equal(t, model.RequestKindExample, s.Result().Source)
	assert.Empty(t, n.kinds())
}

func TestFetchExample_ServerErrorScenario(t *testing.T) {
	p := &fakeProcessor{exampleErr: &backend.StatusError{Endpoint: backend.ExamplePath, StatusCode: http.StatusInternalServerError}}
	s, n := newTestSession(t, p)
	sink := newMemorySink()

	err := s.FetchExample(context.Background())
	require.Error(t, err)

	assert.Nil(t, s.Result())
	assert.False(t, s.Busy())
	assert.Equal(t, model.SessionStateIdle, s.Snapshot().State)

	// Failures surface the same way for both controllers
	require.Equal(t, []NoticeKind{NoticeFailure}, n.kinds())
	assert.Equal(t, OperationExample, n.notices[0].Operation)

	receipt, err := s.Download(sink)
	assert.NoError(t, err)
	assert.Nil(t, receipt)
	assert.Zero(t, sink.opened)
}

func TestWithExample(t *testing.T) {
	p := &fakeProcessor{examplePayload: okPayload("x")}
	s := New(p, WithExample("second"))

	require.NoError(t, s.FetchExample(context.Background()))
	assert.Equal(t, "second", p.lastExample)
}

func TestBusyRefusesOverlappingRequests(t *testing.T) {
	p := &fakeProcessor{
		uploadPayload:  okPayload("upload"),
		examplePayload: okPayload("example"),
		block:          make(chan struct{}),
		started:        make(chan struct{}),
	}
	s, n := newTestSession(t, p)
	require.NoError(t, s.Select(model.NewSelectionFromBytes("a.zip", []byte("raw"))))

	done := make(chan error, 1)
	go func() { done <- s.Upload(context.Background()) }()

	select {
	case <-p.started:
	case <-time.After(2 * time.Second):
		t.Fatal("upload did not start")
	}

	assert.True(t, s.Busy())
	assert.ErrorIs(t, s.FetchExample(context.Background()), ErrBusy)
	assert.ErrorIs(t, s.Upload(context.Background()), ErrBusy)
	assert.ErrorIs(t, s.Select(model.NewSelectionFromBytes("b.zip", nil)), ErrBusy)

	close(p.block)
	require.NoError(t, <-done)

	assert.False(t, s.Busy())
	assert.Equal(t, 1, p.uploads)
	assert.Zero(t, p.examples)
	assert.Equal(t, []byte("upload"), s.Result().Data)
	assert.Equal(t, "a.zip", s.Snapshot().Selection.Name)
	assert.Empty(t, n.kinds(), "refused calls are not user notices")
}

func TestDownload_NoResultIsNoop(t *testing.T) {
	s, n := newTestSession(t, &fakeProcessor{})
	sink := newMemorySink()

	receipt, err := s.Download(sink)
	assert.NoError(t, err)
	assert.Nil(t, receipt)
	assert.Zero(t, sink.opened)
	assert.Empty(t, n.kinds())
}

func TestDownload_UploadScenario(t *testing.T) {
	p := &fakeProcessor{uploadPayload: okPayload("zipbytes")}
	s, n := newTestSession(t, p)
	sink := newMemorySink()

	require.NoError(t, s.Select(model.NewSelection("data.zip", 5*1024*1024, func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader([]byte("raw"))), nil
	})))
	require.NoError(t, s.Upload(context.Background()))

	receipt, err := s.Download(sink)
	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.Equal(t, "processed_data.zip", receipt.Name)
	assert.Equal(t, "memory://processed_data.zip", receipt.Location)
	assert.Equal(t, int64(8), receipt.Bytes)
	assert.Equal(t, []byte("zipbytes"), sink.files["processed_data.zip"])
	assert.Equal(t, 1, sink.committed)
	assert.Zero(t, sink.discarded)
	assert.Equal(t, []NoticeKind{NoticeSaved}, n.kinds())

	// a result is read, not consumed
	_, err = s.Download(sink)
	require.NoError(t, err)
	assert.Equal(t, 2, sink.committed)
}

func TestDownload_ExampleWithoutSelection(t *testing.T) {
	p := &fakeProcessor{examplePayload: okPayload("example")}
	s, _ := newTestSession(t, p)
	sink := newMemorySink()

	require.NoError(t, s.FetchExample(context.Background()))
	receipt, err := s.Download(sink)
	require.NoError(t, err)
	assert.Equal(t, "processed.zip", receipt.Name)
}

func TestDownload_ExampleWithSelectionUsesSelectionName(t *testing.T) {
	p := &fakeProcessor{examplePayload: okPayload("example")}
	s, _ := newTestSession(t, p)
	sink := newMemorySink()

	require.NoError(t, s.Select(model.NewSelectionFromBytes("archive.zip", nil)))
	require.NoError(t, s.FetchExample(context.Background()))

	receipt, err := s.Download(sink)
	require.NoError(t, err)
	assert.Equal(t, "processed_archive.zip", receipt.Name)
}

func TestDownload_WriteFailureDiscardsTarget(t *testing.T) {
	p := &fakeProcessor{examplePayload: okPayload("example")}
	s, n := newTestSession(t, p)
	sink := newMemorySink()
	sink.writeErr = errors.New("disk full")

	require.NoError(t, s.FetchExample(context.Background()))
	receipt, err := s.Download(sink)

	assert.Nil(t, receipt)
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, sink.opened)
	assert.Equal(t, 1, sink.discarded, "target must be released exactly once")
	assert.Zero(t, sink.committed)
	assert.Equal(t, []NoticeKind{NoticeFailure}, n.kinds())
	assert.Equal(t, OperationSave, n.notices[0].Operation)
}

func TestDownload_OpenFailure(t *testing.T) {
	p := &fakeProcessor{examplePayload: okPayload("example")}
	s, n := newTestSession(t, p)
	sink := newMemorySink()
	sink.openErr = errors.New("permission denied")

	require.NoError(t, s.FetchExample(context.Background()))
	_, err := s.Download(sink)

	assert.ErrorContains(t, err, "permission denied")
	assert.Zero(t, sink.discarded)
	assert.Equal(t, []NoticeKind{NoticeFailure}, n.kinds())
}

func TestReselectionKeepsResult(t *testing.T) {
	p := &fakeProcessor{uploadPayload: okPayload("processed")}
	s, _ := newTestSession(t, p)
	sink := newMemorySink()

	require.NoError(t, s.Select(model.NewSelectionFromBytes("one.zip", nil)))
	require.NoError(t, s.Upload(context.Background()))
	require.NoError(t, s.Select(model.NewSelectionFromBytes("two.zip", nil)))

	snap := s.Snapshot()
	assert.Equal(t, model.SessionStateSelected, snap.State)
	assert.True(t, snap.HasResult)

	receipt, err := s.Download(sink)
	require.NoError(t, err)
	assert.Equal(t, "processed_two.zip", receipt.Name)
}

func TestClockIsUsedForRequests(t *testing.T) {
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	p := &fakeProcessor{examplePayload: okPayload("x")}
	s := New(p, WithClock(clock))
	require.NoError(t, s.FetchExample(context.Background()))

	req := s.Snapshot().LastRequest
	require.NotNil(t, req)
	assert.Equal(t, time.Second, req.Duration())
	assert.Equal(t, req.FinishedAt, s.Result().ReceivedAt)
}

func TestSetNotifier(t *testing.T) {
	s := New(&fakeProcessor{})
	n := &recordingNotifier{}
	s.SetNotifier(n)

	assert.ErrorIs(t, s.Upload(context.Background()), ErrNoSelection)
	assert.Equal(t, []NoticeKind{NoticeValidation}, n.kinds())
}

// breakerProcessor reports a fixed circuit state
type breakerProcessor struct {
	fakeProcessor
	state string
}

func (b *breakerProcessor) CircuitState() string {
	return b.state
}

func TestFailureLogCarriesCircuitState(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := &breakerProcessor{state: "open"}
	p.exampleErr = backend.ErrCircuitOpen
	s := New(p, WithLogger(zap.New(core)))

	err := s.FetchExample(context.Background())
	require.ErrorIs(t, err, backend.ErrCircuitOpen)

	failures := logs.FilterMessage("operation failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "open", failures[0].ContextMap()["circuit_state"])
}

func TestSelectLogsPath(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := New(&fakeProcessor{}, WithLogger(zap.New(core)))

	sel := model.NewSelectionFromBytes("data.zip", []byte("PK"))
	sel.Path = "/tmp/data.zip"
	require.NoError(t, s.Select(sel))

	selected := logs.FilterMessage("file selected").All()
	require.Len(t, selected, 1)
	assert.Equal(t, "/tmp/data.zip", selected[0].ContextMap()["path"])
}
