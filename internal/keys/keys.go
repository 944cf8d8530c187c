// Package keys names the key strings parley binds. Each value is what
// tea.KeyPressMsg.String reports for that key, so comparisons against
// msg.String() cannot drift from the runtime ("esc", not "escape").
// Printable single-character bindings are written inline.
package keys

import tea "charm.land/bubbletea/v2"

func press(code rune, mod tea.KeyMod) string {
	return tea.KeyPressMsg{Code: code, Mod: mod}.String()
}

// Movement within lists and the transcript.
var (
	Up     = press(tea.KeyUp, 0)
	Down   = press(tea.KeyDown, 0)
	Home   = press(tea.KeyHome, 0)
	End    = press(tea.KeyEnd, 0)
	PgUp   = press(tea.KeyPgUp, 0)
	PgDown = press(tea.KeyPgDown, 0)
)

// Focus, submit and dismiss.
var (
	Enter      = press(tea.KeyEnter, 0)
	ShiftEnter = press(tea.KeyEnter, tea.ModShift)
	AltEnter   = press(tea.KeyEnter, tea.ModAlt)
	Tab        = press(tea.KeyTab, 0)
	ShiftTab   = press(tea.KeyTab, tea.ModShift)
	Escape     = press(tea.KeyEscape, 0)
)

// Global commands.
var (
	CtrlC = press('c', tea.ModCtrl)
	CtrlL = press('l', tea.ModCtrl)
	CtrlN = press('n', tea.ModCtrl)
	CtrlO = press('o', tea.ModCtrl)
	CtrlV = press('v', tea.ModCtrl)
	CtrlX = press('x', tea.ModCtrl)
	CtrlY = press('y', tea.ModCtrl)
)
