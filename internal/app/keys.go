package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/attachment"
	"github.com/zhubert/parley/internal/clipboard"
	pe "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/keys"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/store"
	"github.com/zhubert/parley/internal/ui"
)

// handleKey routes a key press: ctrl+c first, then the visible modal, then
// shortcuts, then the focused panel.
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == keys.CtrlC {
		return m, tea.Quit
	}
	if m.modal.IsVisible() {
		return m.handleModalKey(msg)
	}
	if result, cmd, ok := m.ExecuteShortcut(key); ok {
		return result, cmd
	}

	if m.focus == FocusSidebar {
		return m.handleSidebarKey(key, msg)
	}
	return m.handleChatKey(key, msg)
}

func (m *Model) handleSidebarKey(key string, msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key == keys.Enter {
		if m.sidebar.IsNewChatSelected() {
			return shortcutNewConversation(m)
		}
		id, _ := m.sidebar.SelectedID()
		var cmd tea.Cmd
		if id != m.session.ActiveConversationID() {
			cmd = m.runTask(m.convs.Select(id))
		}
		m.syncViews()
		m.setFocus(FocusChat)
		return m, cmd
	}

	var cmd tea.Cmd
	m.sidebar, cmd = m.sidebar.Update(msg)
	return m, cmd
}

func (m *Model) handleChatKey(key string, msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key == keys.Enter {
		return m.submit()
	}

	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

// submit sends the composer text and the pending image.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	task, err := m.session.Submit(m.chat.GetInput())
	if err != nil {
		switch pe.GetKind(err) {
		case pe.KindBusy:
			return m, m.flash(ui.FlashWarning, "Still waiting for the last reply")
		case pe.KindInvalid:
			// Nothing typed and no image
			return m, nil
		default:
			return m, m.flash(ui.FlashError, pe.Message(err))
		}
	}
	m.syncViews()
	return m, tea.Batch(m.runTask(task), ui.StopwatchTick())
}

// attachImage makes img the pending image and renders its preview.
func (m *Model) attachImage(img store.Image) tea.Cmd {
	logger.WithConversation(m.session.ActiveConversationID()).Info("image attached", "name", img.Name, "type", img.MediaType, "bytes", len(img.Data))
	task := m.session.SelectImage(img)
	m.syncViews()
	return tea.Batch(m.runTask(task), m.flash(ui.FlashInfo, "Attached "+attachment.Describe(img)))
}

// attachFromClipboard attaches the clipboard image if there is one. When
// report is false, an empty or unavailable clipboard is silent.
func (m *Model) attachFromClipboard(report bool) (tea.Cmd, bool) {
	img, ok, err := clipboard.ReadImage()
	switch {
	case err != nil && pe.Is(err, pe.KindInvalid):
		return m.flash(ui.FlashError, pe.Message(err)), false
	case err != nil:
		if report {
			return m.flash(ui.FlashError, "Clipboard unavailable"), false
		}
		return nil, false
	case !ok:
		if report {
			return m.flash(ui.FlashInfo, "No image on the clipboard"), false
		}
		return nil, false
	}
	return m.attachImage(img), true
}
