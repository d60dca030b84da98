package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ytget/zip-uploader/internal/archive"
	"github.com/ytget/zip-uploader/internal/backend"
	"github.com/ytget/zip-uploader/internal/model"
	"github.com/ytget/zip-uploader/internal/session"
)

// NoticeText returns the localized dialog title and message for a notice
func (l *Localization) NoticeText(n session.Notice) (string, string) {
	switch n.Kind {
	case session.NoticeValidation:
		return l.GetText(KeyError), l.validationMessage(n.Err)
	case session.NoticeSaved:
		if n.Receipt == nil {
			return l.GetText(KeySaved), ""
		}
		return l.GetText(KeySaved), n.Receipt.Location
	default:
		return l.failureTitle(n.Operation), l.failureDetail(n.Err)
	}
}

func (l *Localization) validationMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrFileTooLarge):
		return fmt.Sprintf(l.GetText(KeyFileTooLarge), humanize.IBytes(uint64(session.MaxFileSize)))
	case errors.Is(err, session.ErrNoSelection):
		return l.GetText(KeyNoSelection)
	case err != nil:
		return err.Error()
	}
	return ""
}

func (l *Localization) failureTitle(op session.Operation) string {
	switch op {
	case session.OperationUpload:
		return l.GetText(KeyUploadFailed)
	case session.OperationExample:
		return l.GetText(KeyExampleFailed)
	case session.OperationSave:
		return l.GetText(KeySaveFailed)
	case session.OperationSelect:
		return l.GetText(KeyCannotReadFile)
	}
	return l.GetText(KeyError)
}

func (l *Localization) failureDetail(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, backend.ErrCircuitOpen) {
		return l.GetText(KeyServiceUnavailable)
	}

	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		msg := fmt.Sprintf(l.GetText(KeyServerStatus), statusErr.StatusCode)
		if detail := statusErr.Detail(); detail != "" {
			msg += ": " + detail
		}
		return msg
	}
	return err.Error()
}

// ResultLine describes the pending result, e.g. "processed.zip · 3 files · 12 KiB"
func ResultLine(name string, summary archive.Summary) string {
	parts := []string{name, summary.String()}
	return strings.Join(parts, MiddleDotSeparator)
}

// RequestLine describes how the last request ended, "" while it is still active
func (l *Localization) RequestLine(req *model.Request) string {
	switch {
	case req == nil || req.Status.IsActive():
		return ""
	case req.Status == model.RequestStatusError:
		return fmt.Sprintf(l.GetText(KeyRequestFailed), req.GetDurationString())
	case req.Status.IsFinished():
		return fmt.Sprintf(l.GetText(KeyRequestCompleted), req.GetDurationString())
	}
	return ""
}

// ContentsLine lists the archive entries, e.g. "a.txt, b.txt +3"
func ContentsLine(summary archive.Summary) string {
	if !summary.IsZip || len(summary.Names) == 0 {
		return ""
	}
	line := strings.Join(summary.Names, ", ")
	if more := summary.Entries - len(summary.Names); more > 0 {
		line += fmt.Sprintf(" +%d", more)
	}
	return line
}

// formatBytes renders a byte count with binary units
func (ui *RootUI) formatBytes(n int64) string {
	if n < 0 {
		return DashPlaceholder
	}
	return humanize.IBytes(uint64(n))
}
