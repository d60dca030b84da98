package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ytget/zip-uploader/internal/session"
)

// PartialSuffix marks a file that is still being written
const PartialSuffix = ".part"

// maxUniqueAttempts bounds the "name (n).ext" search
const maxUniqueAttempts = 1000

// DirSink saves results into a directory on disk
type DirSink struct {
	Dir        string
	AutoReveal bool

	logger *zap.Logger
	reveal func(path string) error
}

// NewDirSink creates a sink writing into dir
func NewDirSink(dir string, autoReveal bool, logger *zap.Logger) *DirSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirSink{
		Dir:        dir,
		AutoReveal: autoReveal,
		logger:     logger.Named("sink"),
		reveal:     OpenFileInManager,
	}
}

// Open creates a partial file next to the final destination
func (s *DirSink) Open(name string) (session.Target, error) {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return nil, fmt.Errorf("invalid file name %q", name)
	}

	if err := CreateDirectoryIfNotExists(s.Dir); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", s.Dir, err)
	}

	file, err := os.CreateTemp(s.Dir, "."+base+".*"+PartialSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file in %s: %w", s.Dir, err)
	}

	return &dirTarget{sink: s, name: base, file: file}, nil
}

// dirTarget is a single in-progress save
type dirTarget struct {
	sink     *DirSink
	name     string
	file     *os.File
	location string
	released bool
}

func (t *dirTarget) Write(p []byte) (int, error) {
	return t.file.Write(p)
}

// Commit closes the partial file and moves it onto a freshly claimed name
func (t *dirTarget) Commit() error {
	if t.released {
		return errors.New("target already released")
	}
	t.released = true

	tmp := t.file.Name()
	if err := t.file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := os.Chmod(tmp, DefaultFilePermissions); err != nil {
		t.sink.logger.Debug("chmod failed", zap.String("path", tmp), zap.Error(err))
	}

	dest, err := ClaimPath(t.sink.Dir, t.name)
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// the rename only replaces the empty placeholder created by ClaimPath
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		_ = os.Remove(dest)
		return fmt.Errorf("failed to move result to %s: %w", dest, err)
	}
	t.location = dest

	if t.sink.AutoReveal && t.sink.reveal != nil {
		if err := t.sink.reveal(dest); err != nil {
			t.sink.logger.Warn("failed to reveal saved file", zap.String("path", dest), zap.Error(err))
		}
	}
	return nil
}

// Discard closes and removes the partial file
func (t *dirTarget) Discard() error {
	if t.released {
		return nil
	}
	t.released = true

	tmp := t.file.Name()
	closeErr := t.file.Close()
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", tmp, err)
	}
	return closeErr
}

func (t *dirTarget) Location() string {
	return t.location
}

// ClaimPath creates an empty placeholder at dir/name, or at "name (n).ext"
// when that name is taken, and returns its path. Creation uses O_EXCL so two
// savers never receive the same path.
func ClaimPath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i <= maxUniqueAttempts; i++ {
		candidate := filepath.Join(dir, name)
		if i > 0 {
			candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		}

		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, DefaultFilePermissions)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to claim %s: %w", candidate, err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(candidate)
			return "", fmt.Errorf("failed to claim %s: %w", candidate, err)
		}
		return candidate, nil
	}

	return "", fmt.Errorf("no free file name for %s in %s", name, dir)
}
