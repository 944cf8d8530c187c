package app

import (
	tea "charm.land/bubbletea/v2"

	pe "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/keys"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/ui"
	"github.com/zhubert/parley/internal/ui/modals"
)

// shortcutTriggeredMsg runs a shortcut picked from the help modal once the
// modal has closed.
type shortcutTriggeredMsg struct {
	key string
}

// handleModalKey routes modal key events to the handler for the modal's state type.
func (m *Model) handleModalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch s := m.modal.State.(type) {
	case *modals.ConfirmDeleteState:
		return m.handleConfirmDeleteModal(key, msg, s)
	case *modals.ConfirmClearState:
		return m.handleConfirmClearModal(key, msg, s)
	case *modals.AttachImageState:
		return m.handleAttachImageModal(key, msg, s)
	case *modals.SettingsState:
		return m.handleSettingsModal(key, msg, s)
	case *modals.WelcomeState:
		return m.handleWelcomeModal(key, msg, s)
	case *modals.HelpState:
		return m.handleHelpModal(key, msg, s)
	}
	return m, nil
}

// forwardToModal passes a key the handler did not consume to the modal.
func (m *Model) forwardToModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	return m, cmd
}

func (m *Model) handleConfirmDeleteModal(key string, msg tea.KeyPressMsg, state *modals.ConfirmDeleteState) (tea.Model, tea.Cmd) {
	if m.convs.Deleting() {
		// Wait for the service; the modal closes when the result lands.
		return m, nil
	}
	switch key {
	case keys.Escape:
		m.convs.CancelDelete()
		m.modal.Hide()
		return m, nil
	case keys.Enter:
		if !state.Confirmed() {
			m.convs.CancelDelete()
			m.modal.Hide()
			return m, nil
		}
		return m, m.runTask(m.convs.ConfirmDelete())
	}
	return m.forwardToModal(msg)
}

func (m *Model) handleConfirmClearModal(key string, msg tea.KeyPressMsg, state *modals.ConfirmClearState) (tea.Model, tea.Cmd) {
	if m.session.Clearing() {
		return m, nil
	}
	switch key {
	case keys.Escape:
		m.session.CancelClear()
		m.modal.Hide()
		return m, nil
	case keys.Enter:
		if !state.Confirmed() {
			m.session.CancelClear()
			m.modal.Hide()
			return m, nil
		}
		m.modal.SetError("")
		return m, m.runTask(m.session.ConfirmClear())
	}
	return m.forwardToModal(msg)
}

func (m *Model) handleAttachImageModal(key string, msg tea.KeyPressMsg, state *modals.AttachImageState) (tea.Model, tea.Cmd) {
	switch key {
	case keys.Escape:
		m.modal.Hide()
		return m, nil
	case keys.Enter:
		img, err := state.Load()
		if err != nil {
			m.modal.SetError(pe.Message(err))
			return m, nil
		}
		m.modal.Hide()
		return m, m.attachImage(img)
	}
	return m.forwardToModal(msg)
}

// handleSettingsModal applies and saves the global settings.
func (m *Model) handleSettingsModal(key string, msg tea.KeyPressMsg, state *modals.SettingsState) (tea.Model, tea.Cmd) {
	switch key {
	case keys.Escape:
		m.modal.Hide()
		return m, nil
	case keys.Enter:
		m.config.SetNotificationsEnabled(state.GetNotificationsEnabled())
		if state.ThemeChanged() {
			theme := state.GetSelectedTheme()
			ui.SetThemeByName(theme)
			m.config.SetTheme(theme)
			// Rendered transcript lines carry the old colors
			m.syncViews()
		}
		if err := m.config.Save(); err != nil {
			logger.WithComponent("app").Error("failed to save settings", "error", err)
			m.modal.SetError("Failed to save: " + pe.Message(err))
			return m, nil
		}
		m.modal.Hide()
		return m, m.flash(ui.FlashSuccess, "Settings saved")
	}
	return m.forwardToModal(msg)
}

// handleWelcomeModal records that the welcome has been seen.
func (m *Model) handleWelcomeModal(key string, _ tea.KeyPressMsg, _ *modals.WelcomeState) (tea.Model, tea.Cmd) {
	switch key {
	case keys.Enter, keys.Escape:
		m.config.MarkWelcomeShown()
		if err := m.config.Save(); err != nil {
			logger.WithComponent("app").Warn("failed to save welcome-shown flag", "error", err)
		}
		m.modal.Hide()
	}
	return m, nil
}

func (m *Model) handleHelpModal(key string, msg tea.KeyPressMsg, state *modals.HelpState) (tea.Model, tea.Cmd) {
	// While filtering, forward all keys to the list (Esc cancels filter, Enter applies)
	if state.IsFiltering() {
		return m.forwardToModal(msg)
	}

	switch key {
	case keys.Escape, "?", "q":
		m.modal.Hide()
		return m, nil
	case keys.Enter:
		shortcut := state.Selected()
		m.modal.Hide()
		if shortcut == nil {
			return m, nil
		}
		target, ok := shortcutKeyFor(shortcut.Key)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return shortcutTriggeredMsg{key: target} }
	}
	return m.forwardToModal(msg)
}

// handleStartupModals shows the welcome modal on first run.
func (m *Model) handleStartupModals() (tea.Model, tea.Cmd) {
	if m.config.HasSeenWelcome() || m.modal.IsVisible() {
		return m, nil
	}
	m.modal.Show(modals.NewWelcomeState(m.config.GetAPIURL()))
	return m, nil
}
