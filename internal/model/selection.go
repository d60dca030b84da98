package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ZipExtension is the filename filter hint offered by the file picker.
// It is not enforced on selection.
const ZipExtension = ".zip"

// Selection is the file the user chose for upload. Content is opened lazily
// so a large archive is streamed into the request rather than held in memory.
type Selection struct {
	Name string
	Size int64
	Path string // local path if the selection came from disk

	open func() (io.ReadCloser, error)
}

// NewSelection creates a selection backed by an arbitrary opener
func NewSelection(name string, size int64, open func() (io.ReadCloser, error)) *Selection {
	return &Selection{Name: name, Size: size, open: open}
}

// NewSelectionFromBytes creates a selection over in-memory content
func NewSelectionFromBytes(name string, data []byte) *Selection {
	return NewSelection(name, int64(len(data)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// NewSelectionFromFile creates a selection for a file on disk
func NewSelectionFromFile(path string) (*Selection, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	sel := NewSelection(filepath.Base(path), info.Size(), func() (io.ReadCloser, error) {
		return os.Open(path)
	})
	sel.Path = path
	return sel, nil
}

// Open returns a reader over the selection content
func (s *Selection) Open() (io.ReadCloser, error) {
	if s.open == nil {
		return nil, errors.New("selection has no content")
	}
	return s.open()
}

// HasZipExtension reports whether the name carries the .zip hint
func (s *Selection) HasZipExtension() bool {
	return filepath.Ext(s.Name) == ZipExtension
}
