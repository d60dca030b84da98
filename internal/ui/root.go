package ui

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"sort"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/ytget/zip-uploader/internal/archive"
	"github.com/ytget/zip-uploader/internal/config"
	"github.com/ytget/zip-uploader/internal/model"
	"github.com/ytget/zip-uploader/internal/platform"
	"github.com/ytget/zip-uploader/internal/session"
)

// fileScheme is the URI scheme of local files
const fileScheme = "file"

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	app          fyne.App
	session      *session.Session
	settings     *config.Settings
	localization *Localization
	mobile       *MobileUI
	logger       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// run starts a backend call off the UI goroutine
	run func(func())
	// newSink builds the save destination for a download
	newSink func() session.Sink

	dropZone     *DropZone
	sendBtn      *widget.Button
	downloadBtn  *widget.Button
	exampleBtn   *widget.Button
	progress     *widget.ProgressBarInfinite
	statusLabel  *widget.Label
	requestLabel *widget.Label

	// cached archive summary of the current result
	summaryID string
	summary   archive.Summary
}

// NewRootUI creates the main window content and binds it to the session
func NewRootUI(window fyne.Window, app fyne.App, sess *session.Session, settings *config.Settings, logger *zap.Logger) *RootUI {
	if logger == nil {
		logger = zap.NewNop()
	}

	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ctx, cancel := context.WithCancel(context.Background())

	ui := &RootUI{
		window:       window,
		app:          app,
		session:      sess,
		settings:     settings,
		localization: localization,
		mobile:       NewMobileUI(),
		logger:       logger.Named("ui"),
		ctx:          ctx,
		cancel:       cancel,
		run:          func(f func()) { go f() },
	}
	ui.newSink = func() session.Sink {
		return platform.NewDirSink(ui.settings.GetDownloadDirectory(), ui.settings.GetAutoRevealOnComplete(), ui.logger)
	}

	window.SetTitle(localization.GetText(KeyAppTitle))
	window.SetIcon(AppIcon)

	sess.SetUpdateCallback(ui.onSessionUpdate)
	sess.SetNotifier(ui)

	ui.setupUI()

	window.SetOnDropped(ui.onDropped)
	window.SetOnClosed(ui.Close)

	ui.logger.Debug("root UI initialized")
	return ui
}

// Close cancels any in-flight request
func (ui *RootUI) Close() {
	ui.cancel()
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	t := ui.localization.GetText

	ui.createMenu()

	ui.dropZone = NewDropZone(t(KeyDropPlaceholder), t(KeyDropHint), ui.onPickFile)

	ui.sendBtn = widget.NewButton(t(KeySend), ui.onSendClick)
	ui.sendBtn.Importance = widget.HighImportance

	ui.exampleBtn = widget.NewButton(t(KeyExample), ui.onExampleClick)

	ui.downloadBtn = widget.NewButton(t(KeyDownload), ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.SuccessImportance
	ui.downloadBtn.Hide()

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	ui.progress = widget.NewProgressBarInfinite()
	ui.progress.Stop()
	ui.progress.Hide()

	ui.statusLabel = widget.NewLabel("")
	ui.statusLabel.Wrapping = fyne.TextWrapWord

	ui.requestLabel = widget.NewLabel("")
	ui.requestLabel.Importance = widget.LowImportance
	ui.requestLabel.Hide()

	top := container.NewHBox(layout.NewSpacer(), settingsBtn)
	bottom := container.NewVBox(
		ui.progress,
		ui.statusLabel,
		ui.requestLabel,
		ui.mobile.ButtonRow(ui.exampleBtn, ui.downloadBtn, ui.sendBtn),
	)

	content := container.NewBorder(
		top,    // top
		bottom, // bottom
		nil,    // left
		nil,    // right
		container.NewPadded(ui.dropZone),
	)

	minSize := canvas.NewRectangle(color.Transparent)
	minSize.SetMinSize(fyne.NewSize(WindowMinWidth, WindowMinHeight))

	ui.window.SetContent(container.NewStack(minSize, content))
	ui.render(ui.session.Snapshot())
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))

	availableLanguages := ui.localization.GetAvailableLanguages()
	codes := make([]string, 0, len(availableLanguages))
	for code := range availableLanguages {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		langCode := code
		langItem := fyne.NewMenuItem(availableLanguages[code], func() {
			ui.onLanguageChange(langCode)
		})
		langItem.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	))
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	t := ui.localization.GetText

	ui.window.SetTitle(t(KeyAppTitle))
	ui.sendBtn.SetText(t(KeySend))
	ui.exampleBtn.SetText(t(KeyExample))
	ui.downloadBtn.SetText(t(KeyDownload))
	ui.render(ui.session.Snapshot())
}

// onShowSettings opens the settings dialog
func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.localization, ui.window, func() {
		ui.localization.SetLanguage(ui.settings.GetLanguage())
		ui.refreshUITexts()
		ui.createMenu()
	}).Show()
}

// onPickFile opens the file picker filtered to zip archives
func (ui *RootUI) onPickFile() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			ui.showError(ui.localization.GetText(KeyCannotReadFile), err)
			return
		}
		if reader == nil {
			return // cancelled
		}
		defer reader.Close()

		ui.selectURI(reader.URI(), reader)
	}, ui.window)

	fd.SetFilter(storage.NewExtensionFileFilter([]string{model.ZipExtension}))
	fd.Show()
}

// onDropped handles files dropped on the window; only the first one is used
func (ui *RootUI) onDropped(_ fyne.Position, uris []fyne.URI) {
	if len(uris) == 0 || ui.session.Busy() {
		return
	}
	if len(uris) > 1 {
		ui.logger.Debug("multiple files dropped, using the first", zap.Int("count", len(uris)))
	}
	ui.selectURI(uris[0], nil)
}

// selectURI turns a picked or dropped URI into a session selection
func (ui *RootUI) selectURI(uri fyne.URI, r io.Reader) {
	sel, err := selectionFromURI(uri, r)
	if err != nil {
		ui.logger.Warn("failed to read selection", zap.String("uri", uri.String()), zap.Error(err))
		ui.showError(ui.localization.GetText(KeyCannotReadFile), err)
		return
	}

	if err := ui.session.Select(sel); err != nil {
		ui.logger.Debug("selection not accepted", zap.String("name", sel.Name), zap.Error(err))
	}
}

// selectionFromURI opens local files lazily and buffers anything else, reading
// at most one byte past the size limit so oversize content is still rejected
func selectionFromURI(uri fyne.URI, r io.Reader) (*model.Selection, error) {
	if uri.Scheme() == fileScheme {
		return model.NewSelectionFromFile(uri.Path())
	}

	if r == nil {
		rc, err := storage.Reader(uri)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", uri.Name(), err)
		}
		defer rc.Close()
		r = rc
	}

	data, err := io.ReadAll(io.LimitReader(r, session.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri.Name(), err)
	}
	return model.NewSelectionFromBytes(uri.Name(), data), nil
}

// onSendClick uploads the current selection
func (ui *RootUI) onSendClick() {
	ui.start(ui.session.Upload)
}

// onExampleClick requests the example result
func (ui *RootUI) onExampleClick() {
	ui.start(ui.session.FetchExample)
}

// start runs a backend operation with the configured timeout
func (ui *RootUI) start(op func(context.Context) error) {
	if ui.session.Busy() {
		return
	}

	ctx, cancel := context.WithTimeout(ui.ctx, ui.settings.GetRequestTimeout())
	ui.run(func() {
		defer cancel()
		if err := op(ctx); err != nil {
			ui.logger.Debug("operation ended with error", zap.Error(err))
		}
	})
}

// onDownloadClick saves the current result
func (ui *RootUI) onDownloadClick() {
	if _, err := ui.session.Download(ui.newSink()); err != nil {
		ui.logger.Debug("download ended with error", zap.Error(err))
	}
}

// onSessionUpdate is the session's update callback
func (ui *RootUI) onSessionUpdate(snap session.Snapshot) {
	fyne.Do(func() {
		ui.render(snap)
	})
}

// render applies a session snapshot to the widgets
func (ui *RootUI) render(snap session.Snapshot) {
	t := ui.localization.GetText

	if snap.Selection != nil {
		ui.dropZone.SetTitle(snap.Selection.Name)
	} else {
		ui.dropZone.SetTitle(t(KeyDropPlaceholder))
	}
	if snap.Selection != nil && !snap.Selection.HasZipExtension() {
		ui.dropZone.SetHint(t(KeyNotZipHint))
	} else {
		ui.dropZone.SetHint(t(KeyDropHint))
	}

	if line := ui.localization.RequestLine(snap.LastRequest); line != "" {
		ui.requestLabel.SetText(line)
		ui.requestLabel.Show()
	} else {
		ui.requestLabel.Hide()
	}

	if snap.Busy {
		ui.dropZone.Disable()
		ui.sendBtn.Disable()
		ui.exampleBtn.Disable()
		ui.progress.Show()
		ui.progress.Start()
		ui.statusLabel.SetText(t(KeyProcessing))
	} else {
		ui.dropZone.Enable()
		ui.sendBtn.Enable()
		ui.exampleBtn.Enable()
		ui.progress.Stop()
		ui.progress.Hide()
		ui.statusLabel.SetText(ui.resultLine(snap))
	}

	if snap.HasResult {
		ui.downloadBtn.Show()
	} else {
		ui.downloadBtn.Hide()
	}
}

// resultLine describes the pending result, "" without one
func (ui *RootUI) resultLine(snap session.Snapshot) string {
	if !snap.HasResult {
		return ""
	}
	result := ui.session.Result()
	if result == nil {
		return ""
	}

	if result.RequestID != ui.summaryID {
		summary, err := archive.Inspect(result.Data)
		if err != nil {
			ui.logger.Debug("result is not inspectable", zap.String("request_id", result.RequestID), zap.Error(err))
		}
		ui.summaryID = result.RequestID
		ui.summary = summary
	}

	return ui.localization.GetText(KeyResultReady) + ": " + ResultLine(snap.ResultName, ui.summary)
}

// contentsText lists the entries of the current result, "" when unknown
func (ui *RootUI) contentsText() string {
	result := ui.session.Result()
	if result == nil || result.RequestID != ui.summaryID {
		return ""
	}
	line := ContentsLine(ui.summary)
	if line == "" {
		return ""
	}
	return ui.localization.GetText(KeyContents) + ": " + line
}

// Notify implements session.Notifier
func (ui *RootUI) Notify(n session.Notice) {
	title, message := ui.localization.NoticeText(n)

	fyne.Do(func() {
		if n.Kind == session.NoticeSaved && n.Receipt != nil {
			ui.statusLabel.SetText(title + MiddleDotSeparator + message)
			ui.sendSavedNotification(n.Receipt)
			ui.showToastNotification(n.Receipt)
			return
		}

		ui.statusLabel.SetText(title + ": " + message)
		dialog.ShowInformation(title, message, ui.window)
	})
}

// showError shows a localized error dialog
func (ui *RootUI) showError(title string, err error) {
	dialog.ShowInformation(title, err.Error(), ui.window)
}

// sendSavedNotification posts a system notification for a saved result
func (ui *RootUI) sendSavedNotification(receipt *session.Receipt) {
	ui.app.SendNotification(&fyne.Notification{
		Title:   ui.localization.GetText(KeySaved),
		Content: receipt.Name,
	})
}

// showToastNotification shows an in-app toast with reveal/open actions
func (ui *RootUI) showToastNotification(receipt *session.Receipt) {
	titleLabel := widget.NewLabel(ui.localization.GetText(KeySaved))
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}

	messageLabel := widget.NewLabel(receipt.Name + MiddleDotSeparator + ui.formatBytes(receipt.Bytes))
	messageLabel.Truncation = fyne.TextTruncateEllipsis

	revealBtn := widget.NewButton(ui.localization.GetText(KeyReveal), func() {
		ui.onRevealFile(receipt.Location)
	})
	revealBtn.Importance = widget.HighImportance

	openBtn := widget.NewButton(ui.localization.GetText(KeyOpen), func() {
		ui.onOpenFile(receipt.Location)
	})

	var toast *widget.PopUp
	closeBtn := widget.NewButton(IconClose, func() {
		toast.Hide()
	})
	closeBtn.Importance = widget.LowImportance

	content := container.NewVBox(
		container.NewBorder(nil, nil, titleLabel, closeBtn),
		messageLabel,
	)
	if text := ui.contentsText(); text != "" {
		contentsLabel := widget.NewLabel(text)
		contentsLabel.Truncation = fyne.TextTruncateEllipsis
		content.Add(contentsLabel)
	}
	content.Add(container.NewHBox(revealBtn, openBtn))

	toast = widget.NewPopUp(content, ui.window.Canvas())

	// top-right corner
	canvasSize := ui.window.Canvas().Size()
	toastSize := fyne.NewSize(ToastWidth, fyne.Max(ToastHeight, content.MinSize().Height))
	toast.Resize(toastSize)
	toast.Move(fyne.NewPos(canvasSize.Width-toastSize.Width-ToastMargin, ToastMargin))
	toast.Show()

	time.AfterFunc(ToastAutoHide, func() {
		fyne.Do(toast.Hide)
	})
}

// onRevealFile shows a saved file in the system file manager
func (ui *RootUI) onRevealFile(filePath string) {
	if err := platform.OpenFileInManager(filePath); err != nil {
		ui.logger.Warn("failed to reveal file", zap.String("path", filePath), zap.Error(err))
		ui.showError(ui.localization.GetText(KeyErrorOpeningFile), err)
	}
}

// onOpenFile opens a saved file with the default application
func (ui *RootUI) onOpenFile(filePath string) {
	if err := platform.OpenFileWithDefaultApp(filePath); err != nil {
		ui.logger.Warn("failed to open file", zap.String("path", filePath), zap.Error(err))
		ui.showError(ui.localization.GetText(KeyErrorOpeningFile), err)
	}
}
