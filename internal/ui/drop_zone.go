package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// DropZone is the tappable intake area. It shows the selected file name, or
// a placeholder until something is chosen. Drops are delivered by the window.
type DropZone struct {
	widget.DisableableWidget

	OnTapped func()

	title *widget.Label
	hint  *widget.Label
}

// NewDropZone creates a drop zone showing placeholder and hint
func NewDropZone(placeholder, hint string, onTapped func()) *DropZone {
	d := &DropZone{
		OnTapped: onTapped,
		title:    widget.NewLabelWithStyle(placeholder, fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		hint:     widget.NewLabelWithStyle(hint, fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
	}
	d.title.Truncation = fyne.TextTruncateEllipsis
	d.hint.Wrapping = fyne.TextWrapWord
	d.ExtendBaseWidget(d)
	return d
}

// CreateRenderer implements fyne.Widget
func (d *DropZone) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(theme.Color(theme.ColorNameInputBackground))
	bg.StrokeColor = theme.Color(theme.ColorNamePrimary)
	bg.StrokeWidth = DropZoneStroke
	bg.CornerRadius = theme.InputRadiusSize()
	bg.SetMinSize(fyne.NewSize(DropZoneMinWidth, DropZoneMinHeight))

	icon := widget.NewIcon(AppIcon)
	content := container.NewStack(bg, container.NewCenter(container.NewVBox(icon, d.title, d.hint)))
	return widget.NewSimpleRenderer(content)
}

// Tapped opens the picker unless the zone is disabled
func (d *DropZone) Tapped(*fyne.PointEvent) {
	if d.Disabled() || d.OnTapped == nil {
		return
	}
	d.OnTapped()
}

// Cursor shows a pointer over the zone
func (d *DropZone) Cursor() desktop.Cursor {
	return desktop.PointerCursor
}

// SetTitle replaces the file name / placeholder text
func (d *DropZone) SetTitle(text string) {
	d.title.SetText(text)
}

// Title returns the text currently shown
func (d *DropZone) Title() string {
	return d.title.Text
}

// SetHint replaces the hint text
func (d *DropZone) SetHint(text string) {
	d.hint.SetText(text)
}
