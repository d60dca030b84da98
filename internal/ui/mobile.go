package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// MobileUI adapts layouts for touch devices
type MobileUI struct {
	isMobile func() bool
}

// NewMobileUI creates a new mobile UI helper
func NewMobileUI() *MobileUI {
	return &MobileUI{isMobile: func() bool { return fyne.CurrentDevice().IsMobile() }}
}

// IsMobileDevice checks if the app is running on a mobile device
func (m *MobileUI) IsMobileDevice() bool {
	return m.isMobile()
}

// ButtonRow stacks buttons full-width on mobile and right-aligns them on desktop
func (m *MobileUI) ButtonRow(buttons ...*widget.Button) *fyne.Container {
	objects := make([]fyne.CanvasObject, 0, len(buttons)+1)
	if m.IsMobileDevice() {
		for _, b := range buttons {
			objects = append(objects, b)
		}
		return container.NewVBox(objects...)
	}

	objects = append(objects, layout.NewSpacer())
	for _, b := range buttons {
		objects = append(objects, b)
	}
	return container.NewHBox(objects...)
}
