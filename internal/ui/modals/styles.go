package modals

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Modal styles mirror the active ui theme. They are replaced wholesale by
// SetStyles whenever the theme changes.
var (
	ModalTitleStyle      lipgloss.Style
	ModalHelpStyle       lipgloss.Style
	SidebarItemStyle     lipgloss.Style
	SidebarSelectedStyle lipgloss.Style
	StatusErrorStyle     lipgloss.Style

	ColorPrimary     color.Color
	ColorSecondary   color.Color
	ColorText        color.Color
	ColorTextMuted   color.Color
	ColorTextInverse color.Color
	ColorWarning     color.Color

	ModalInputWidth     int
	ModalInputCharLimit int
	ModalWidth          int
)

// HelpModalMaxVisible is the height of the shortcut list in the help modal.
const HelpModalMaxVisible = 16

// Palette is the slice of the ui theme that modals render with.
type Palette struct {
	Title, Help, Item, Selected, Error lipgloss.Style

	Primary, Secondary, Text, Muted, Inverse, Warning color.Color

	InputWidth     int
	InputCharLimit int
	Width          int
}

// SetStyles installs p. It must run before any modal renders.
func SetStyles(p Palette) {
	ModalTitleStyle, ModalHelpStyle = p.Title, p.Help
	SidebarItemStyle, SidebarSelectedStyle = p.Item, p.Selected
	StatusErrorStyle = p.Error

	ColorPrimary, ColorSecondary = p.Primary, p.Secondary
	ColorText, ColorTextMuted, ColorTextInverse = p.Text, p.Muted, p.Inverse
	ColorWarning = p.Warning

	ModalInputWidth = p.InputWidth
	ModalInputCharLimit = p.InputCharLimit
	ModalWidth = p.Width
}
