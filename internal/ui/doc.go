package ui

// Package ui contains the Fyne user interface: the drop zone, the Send,
// Example and Download controls, notices and the settings dialog.
// All UI strings are localized via Localization.
