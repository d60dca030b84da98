package ui

import (
	"fyne.io/fyne/v2"
)

const (
	AppIconName = "zip-uploader.svg"
)

// appIconSVG is a folder with a zipper, drawn in the primary theme blue
const appIconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64">
<rect x="8" y="6" width="48" height="52" rx="6" fill="#1976d2"/>
<rect x="28" y="6" width="8" height="4" fill="#ffffff"/>
<rect x="28" y="14" width="8" height="4" fill="#ffffff"/>
<rect x="28" y="22" width="8" height="4" fill="#ffffff"/>
<rect x="26" y="30" width="12" height="14" rx="2" fill="#ffffff"/>
<rect x="30" y="36" width="4" height="4" fill="#1976d2"/>
</svg>`

// AppIcon is the embedded window and drop zone icon
var AppIcon fyne.Resource = fyne.NewStaticResource(AppIconName, []byte(appIconSVG))
