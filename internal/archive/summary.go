// Package archive summarizes result payloads for display.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zip"
)

// Summary describes a result payload for display
type Summary struct {
	IsZip            bool
	Entries          int // files only, directories are not counted
	UncompressedSize uint64
	CompressedSize   int64 // size of the payload itself
	Names            []string
}

// MaxListedNames bounds how many entry names a summary keeps
const MaxListedNames = 20

// ErrEmpty is returned for a zero-length payload
var ErrEmpty = errors.New("empty payload")

// Inspect reads the central directory of data. A payload that is not a zip
// archive is not an error: the summary reports IsZip=false and its size.
func Inspect(data []byte) (Summary, error) {
	summary := Summary{CompressedSize: int64(len(data))}
	if len(data) == 0 {
		return summary, ErrEmpty
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return summary, nil
		}
		return summary, fmt.Errorf("failed to read archive: %w", err)
	}

	summary.IsZip = true
	for _, f := range reader.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		summary.Entries++
		summary.UncompressedSize += f.UncompressedSize64
		if len(summary.Names) < MaxListedNames {
			summary.Names = append(summary.Names, path.Clean(f.Name))
		}
	}

	return summary, nil
}

// String renders the summary as "3 files · 12 KiB"
func (s Summary) String() string {
	if !s.IsZip {
		return humanize.IBytes(uint64(s.CompressedSize))
	}

	files := "files"
	if s.Entries == 1 {
		files = "file"
	}
	return fmt.Sprintf("%d %s · %s", s.Entries, files, humanize.IBytes(s.UncompressedSize))
}
