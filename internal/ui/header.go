package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/rivo/uniseg"
)

const headerTitle = " parley"

// Header represents the top header bar
type Header struct {
	width int
	title string // active conversation title
	host  string // service the client talks to
}

// NewHeader creates a new header
func NewHeader() *Header {
	return &Header{}
}

// SetWidth sets the header width
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetConversationTitle sets the active conversation title to display
func (h *Header) SetConversationTitle(title string) {
	h.title = title
}

// SetHost sets the service host shown muted after the title
func (h *Header) SetHost(host string) {
	h.host = host
}

// View renders the header
func (h *Header) View() string {
	var right string
	if h.title != "" {
		right = h.title
	}
	if h.host != "" {
		if right != "" {
			right += " "
		}
		right += "(" + h.host + ")"
	}
	if right != "" {
		right += " "
	}

	// Widths are measured in terminal cells so emoji and CJK titles line up
	pad := h.width - uniseg.StringWidth(headerTitle) - uniseg.StringWidth(right)
	if pad < 0 {
		right = ""
		pad = max(h.width-uniseg.StringWidth(headerTitle), 0)
	}

	return h.renderGradient(headerTitle+strings.Repeat(" ", pad)+right, h.host)
}

// parseHexColor parses a hex color string (e.g., "#7C3AED") into RGB components
func parseHexColor(hex string) (r, g, b int) {
	if len(hex) == 7 && hex[0] == '#' {
		fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	}
	return
}

// renderGradient renders the content with a theme-aware gradient background.
// The host portion is muted.
func (h *Header) renderGradient(content, host string) string {
	if content == "" {
		return ""
	}

	theme := CurrentTheme()
	startR, startG, startB := parseHexColor(theme.Primary)
	endR, endG, endB := parseHexColor(theme.Bg)
	textColor := lipgloss.Color(theme.Text)
	mutedColor := lipgloss.Color(theme.TextMuted)

	mutedFrom := -1
	if host != "" {
		mutedFrom = strings.LastIndex(content, "("+host+")")
	}

	total := uniseg.StringWidth(content)
	var result strings.Builder
	col := 0
	offset := 0
	gr := uniseg.NewGraphemes(content)
	for gr.Next() {
		cluster := gr.Str()
		t := float64(col) / float64(total)

		cr := int(float64(startR)*(1-t) + float64(endR)*t)
		cg := int(float64(startG)*(1-t) + float64(endG)*t)
		cb := int(float64(startB)*(1-t) + float64(endB)*t)

		style := lipgloss.NewStyle().
			Background(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", cr, cg, cb))).
			Bold(offset < len(headerTitle))
		if mutedFrom >= 0 && offset >= mutedFrom {
			style = style.Foreground(mutedColor)
		} else {
			style = style.Foreground(textColor)
		}
		result.WriteString(style.Render(cluster))

		col += gr.Width()
		offset += len(cluster)
	}

	return result.String()
}
