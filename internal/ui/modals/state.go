// Package modals holds the state behind each modal dialog. The app shows one
// ModalState at a time and type-switches on it to route keys.
package modals

import (
	tea "charm.land/bubbletea/v2"
)

// ModalState is implemented only by the states in this package.
type ModalState interface {
	modalState()
	Title() string
	Help() string
	Render() string
	Update(msg tea.Msg) (ModalState, tea.Cmd)
}

// ModalWithSize is implemented by modals whose content depends on the
// space available to them.
type ModalWithSize interface {
	ModalState
	SetSize(width, height int)
}

// HelpShortcut represents a single keyboard shortcut for display
type HelpShortcut struct {
	Key  string
	Desc string
}

// HelpSection represents a group of related shortcuts
type HelpSection struct {
	Title     string
	Shortcuts []HelpShortcut
}
