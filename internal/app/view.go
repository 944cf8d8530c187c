package app

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/parley/internal/attachment"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/store"
	"github.com/zhubert/parley/internal/ui"
	"github.com/zhubert/parley/internal/ui/modals"
)

// View renders the app. This is the core Bubble Tea view function.
func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.SetContent(m.RenderToString())
	return v
}

// RenderToString renders the current view as a string.
// This is useful for demos and testing.
func (m *Model) RenderToString() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Overlay modal if visible
	if m.modal.IsVisible() {
		return m.modal.View(m.width, m.height)
	}

	panels := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.sidebar.View(),
		m.chat.View(),
	)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.header.View(),
		panels,
		m.footer.View(),
	)
}

// updateSizes updates component sizes based on terminal dimensions
func (m *Model) updateSizes() {
	l := ui.ComputeLayout(m.width, m.height)
	logger.WithComponent("ui").Debug("layout updated", "width", l.Width, "height", l.Height, "sidebar", l.SidebarWidth, "chat", l.ChatWidth)

	m.header.SetWidth(l.Width)
	m.footer.SetWidth(l.Width)
	m.sidebar.SetSize(l.SidebarWidth, l.ContentHeight)
	m.chat.SetSize(l.ChatWidth, l.ContentHeight)
}

// activeTitle is the open conversation's title for display, or "" when
// nothing is open.
func (m *Model) activeTitle() string {
	id := m.session.ActiveConversationID()
	if id == "" {
		return ""
	}
	if t := m.session.ActiveTitle(); t != "" {
		return t
	}
	if t, ok := m.convs.Title(id); ok && t != "" {
		return t
	}
	return store.DefaultTitle
}

// syncViews copies component state into the views. It runs after every
// change to the session or the list.
func (m *Model) syncViews() {
	activeID := m.session.ActiveConversationID()

	m.header.SetConversationTitle(m.activeTitle())

	m.sidebar.SetSummaries(m.convs.Summaries(), m.now())
	m.sidebar.SetLoading(m.convs.Loading(), m.convs.Loaded())
	m.sidebar.SetActive(activeID)

	m.chat.SetConversation(activeID != "", m.session.Transcript(), m.session.Loading())
	m.chat.SetWaiting(m.session.Sending())
	if img, ok := m.session.PendingImage(); ok {
		m.chat.SetImage(attachment.Describe(img), m.session.ImagePreview() != "")
	} else {
		m.chat.SetImage("", false)
	}

	if activeID == "" && m.focus == FocusChat {
		m.setFocus(FocusSidebar)
	}
	m.syncModal()
	m.syncFooter()
}

// syncModal closes confirmation prompts whose operation has finished.
func (m *Model) syncModal() {
	switch m.modal.State.(type) {
	case *modals.ConfirmDeleteState:
		if _, pending := m.convs.PendingConfirmation(); !pending {
			m.modal.Hide()
		}
	case *modals.ConfirmClearState:
		if !m.session.ClearConfirmationOpen() {
			m.modal.Hide()
		}
	}
}

func (m *Model) syncFooter() {
	_, hasImage := m.session.PendingImage()
	m.footer.SetContext(
		m.focus == FocusSidebar,
		m.session.ActiveConversationID() != "",
		hasImage,
		m.session.Sending(),
	)
}
