package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconClose    = "×"
)

// Text fragments
const (
	MiddleDotSeparator = " · "
	DashPlaceholder    = "—"
)

// Layout sizing
const (
	WindowMinWidth  float32 = 420
	WindowMinHeight float32 = 360

	DropZoneMinWidth  float32 = 320
	DropZoneMinHeight float32 = 160
	DropZoneStroke    float32 = 2

	SettingsDialogWidth  float32 = 520
	SettingsDialogHeight float32 = 460
)

// Toast notification sizing and behavior
const (
	ToastWidth    float32 = 320
	ToastHeight   float32 = 120
	ToastMargin   float32 = 20
	ToastAutoHide         = 5 * time.Second
)
