package ui

// Layout is the split of the terminal between the header, the two panels
// and the footer.
type Layout struct {
	Width, Height int

	ContentHeight int
	SidebarWidth  int
	ChatWidth     int
}

// ComputeLayout splits a width x height terminal. Sizes below the minimum
// are clamped so no panel goes negative.
func ComputeLayout(width, height int) Layout {
	width = max(width, MinTerminalWidth)
	height = max(height, MinTerminalHeight)
	sidebar := width / SidebarWidthRatio
	return Layout{
		Width:         width,
		Height:        height,
		ContentHeight: height - HeaderHeight - FooterHeight,
		SidebarWidth:  sidebar,
		ChatWidth:     width - sidebar,
	}
}

// innerSize is the usable size inside a bordered panel of outer size n.
func innerSize(n int) int {
	return n - BorderSize
}
