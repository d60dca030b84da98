package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestDropZone_Tap(t *testing.T) {
	test.NewApp()

	tapped := 0
	dz := NewDropZone("zip", "hint", func() { tapped++ })
	w := test.NewWindow(dz)
	defer w.Close()

	test.Tap(dz)
	assert.Equal(t, 1, tapped)

	dz.Disable()
	test.Tap(dz)
	assert.Equal(t, 1, tapped, "disabled zone ignores taps")

	dz.Enable()
	test.Tap(dz)
	assert.Equal(t, 2, tapped)
}

func TestDropZone_Title(t *testing.T) {
	test.NewApp()

	dz := NewDropZone("zip", "hint", nil)
	w := test.NewWindow(dz)
	defer w.Close()

	assert.Equal(t, "zip", dz.Title())

	dz.SetTitle("data.zip")
	assert.Equal(t, "data.zip", dz.Title())

	// nil handler is safe
	test.Tap(dz)

	min := dz.MinSize()
	assert.GreaterOrEqual(t, min.Width, DropZoneMinWidth)
	assert.GreaterOrEqual(t, min.Height, DropZoneMinHeight)
}
