package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/ui"
)

// flash shows text in the footer until the flash tick expires it.
func (m *Model) flash(kind ui.FlashType, text string) tea.Cmd {
	m.footer.SetFlash(text, kind)
	return ui.FlashTick()
}
