package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/clipboard"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/ui"
	"github.com/zhubert/parley/internal/ui/modals"
)

// Shortcut represents a keyboard shortcut with its metadata and handler.
// This is the single source of truth for the shortcuts in the help modal.
type Shortcut struct {
	Key              string                              // The key binding (e.g., "n", "ctrl+o")
	DisplayKey       string                              // Display name in help; defaults to Key
	Description      string                              // Human-readable description
	Category         string                              // Section for help modal grouping
	RequiresSelected bool                                // A conversation row must be selected
	RequiresSidebar  bool                                // Must not be in chat focus
	RequiresChat     bool                                // Must be in chat focus
	Handler          func(m *Model) (tea.Model, tea.Cmd) // Action to perform
	Condition        func(m *Model) bool                 // Optional extra condition
}

// Categories for organizing shortcuts in the help modal
const (
	CategoryNavigation    = "Navigation"
	CategoryConversations = "Conversations"
	CategoryChat          = "Chat (when focused)"
	CategoryGeneral       = "General"
)

var categoryOrder = []string{
	CategoryNavigation,
	CategoryConversations,
	CategoryChat,
	CategoryGeneral,
}

// ShortcutRegistry lists the executable shortcuts. Entries appear in the
// help modal and can be triggered from it.
var ShortcutRegistry = []Shortcut{
	// Navigation
	{
		Key:         "tab",
		DisplayKey:  "Tab",
		Description: "Switch between sidebar and chat",
		Category:    CategoryNavigation,
		Handler:     shortcutToggleFocus,
	},

	// Conversations
	{
		Key:             "n",
		Description:     "New conversation",
		Category:        CategoryConversations,
		RequiresSidebar: true,
		Handler:         shortcutNewConversation,
	},
	{
		Key:         "ctrl+n",
		DisplayKey:  "ctrl-n",
		Description: "New conversation from anywhere",
		Category:    CategoryConversations,
		Handler:     shortcutNewConversation,
	},
	{
		Key:              "d",
		Description:      "Delete selected conversation",
		Category:         CategoryConversations,
		RequiresSidebar:  true,
		RequiresSelected: true,
		Handler:          shortcutDeleteConversation,
	},
	{
		Key:             "r",
		Description:     "Reload conversation list",
		Category:        CategoryConversations,
		RequiresSidebar: true,
		Handler:         shortcutRefresh,
	},

	// Chat
	{
		Key:          "ctrl+o",
		DisplayKey:   "ctrl-o",
		Description:  "Attach image from a file",
		Category:     CategoryChat,
		RequiresChat: true,
		Handler:      shortcutAttachImage,
		Condition:    (*Model).canCompose,
	},
	{
		Key:          "ctrl+v",
		DisplayKey:   "ctrl-v",
		Description:  "Paste image from the clipboard",
		Category:     CategoryChat,
		RequiresChat: true,
		Handler:      shortcutPasteImage,
		Condition:    (*Model).canCompose,
	},
	{
		Key:          "ctrl+x",
		DisplayKey:   "ctrl-x",
		Description:  "Remove attached image",
		Category:     CategoryChat,
		RequiresChat: true,
		Handler:      shortcutRemoveImage,
		Condition: func(m *Model) bool {
			_, ok := m.session.PendingImage()
			return ok
		},
	},
	{
		Key:          "ctrl+l",
		DisplayKey:   "ctrl-l",
		Description:  "Clear chat",
		Category:     CategoryChat,
		RequiresChat: true,
		Handler:      shortcutClearChat,
	},
	{
		Key:          "ctrl+y",
		DisplayKey:   "ctrl-y",
		Description:  "Copy last reply",
		Category:     CategoryChat,
		RequiresChat: true,
		Handler:      shortcutCopyReply,
	},

	// General
	// "?" (help) is handled in ExecuteShortcut; it reads this registry.
	{
		Key:             "s",
		Description:     "Settings",
		Category:        CategoryGeneral,
		RequiresSidebar: true,
		Handler:         shortcutSettings,
	},
	{
		Key:             "q",
		Description:     "Quit",
		Category:        CategoryGeneral,
		RequiresSidebar: true,
		Handler:         shortcutQuit,
	},
}

// helpShortcut is kept out of the registry because showing help reads it.
var helpShortcut = Shortcut{
	Key:             "?",
	Description:     "Show this help",
	Category:        CategoryGeneral,
	RequiresSidebar: true,
}

// DisplayOnlyShortcuts are shown in help but not executable from the help modal.
var DisplayOnlyShortcuts = []Shortcut{
	{DisplayKey: "↑/↓ or j/k", Description: "Move through conversations", Category: CategoryNavigation},
	{DisplayKey: "Enter", Description: "Open conversation / Send message", Category: CategoryNavigation},
	{DisplayKey: "PgUp/PgDn", Description: "Scroll the transcript", Category: CategoryNavigation},
	{DisplayKey: "shift+enter", Description: "New line in message", Category: CategoryChat},
	{DisplayKey: "ctrl-c", Description: "Quit from anywhere", Category: CategoryGeneral},
}

// isShortcutApplicable checks if a shortcut is applicable given the current model state.
func (m *Model) isShortcutApplicable(s Shortcut) bool {
	if s.RequiresSidebar && m.focus != FocusSidebar {
		return false
	}
	if s.RequiresChat && m.focus != FocusChat {
		return false
	}
	if s.RequiresSelected {
		if _, ok := m.sidebar.SelectedID(); !ok {
			return false
		}
	}
	if s.Condition != nil && !s.Condition(m) {
		return false
	}
	return true
}

// ExecuteShortcut finds and executes a shortcut by key.
// Returns (model, cmd, true) if the shortcut was found and executed.
// Returns (model, nil, false) if the shortcut was not found or guards failed,
// so the key can go to the focused panel.
func (m *Model) ExecuteShortcut(key string) (tea.Model, tea.Cmd, bool) {
	if key == helpShortcut.Key {
		if !m.isShortcutApplicable(helpShortcut) {
			return m, nil, false
		}
		result, cmd := shortcutHelp(m)
		return result, cmd, true
	}

	for _, s := range ShortcutRegistry {
		if s.Key != key {
			continue
		}
		if !m.isShortcutApplicable(s) {
			logger.WithComponent("app").Debug("shortcut guard failed", "key", key, "focus", m.focus.String())
			return m, nil, false
		}
		result, cmd := s.Handler(m)
		return result, cmd, true
	}
	return m, nil, false
}

// getApplicableHelpSections builds help modal sections from the shortcuts
// that apply in the current state.
func (m *Model) getApplicableHelpSections() []modals.HelpSection {
	categories := make(map[string][]modals.HelpShortcut)
	add := func(s Shortcut) {
		displayKey := s.DisplayKey
		if displayKey == "" {
			displayKey = s.Key
		}
		categories[s.Category] = append(categories[s.Category], modals.HelpShortcut{
			Key:  displayKey,
			Desc: s.Description,
		})
	}

	for _, s := range ShortcutRegistry {
		if m.isShortcutApplicable(s) {
			add(s)
		}
	}
	add(helpShortcut)
	for _, s := range DisplayOnlyShortcuts {
		add(s)
	}

	var sections []modals.HelpSection
	for _, cat := range categoryOrder {
		if shortcuts := categories[cat]; len(shortcuts) > 0 {
			sections = append(sections, modals.HelpSection{Title: cat, Shortcuts: shortcuts})
		}
	}
	return sections
}

// shortcutKeyFor maps a help display key back to its registry key.
func shortcutKeyFor(displayKey string) (string, bool) {
	if displayKey == helpShortcut.Key {
		return helpShortcut.Key, true
	}
	for _, s := range ShortcutRegistry {
		if s.Key == displayKey || s.DisplayKey == displayKey {
			return s.Key, true
		}
	}
	return "", false
}

func shortcutToggleFocus(m *Model) (tea.Model, tea.Cmd) {
	if m.focus == FocusSidebar {
		m.setFocus(FocusChat)
	} else {
		m.setFocus(FocusSidebar)
	}
	return m, nil
}

func shortcutNewConversation(m *Model) (tea.Model, tea.Cmd) {
	cmd := m.runTask(m.convs.NewConversation())
	m.syncViews()
	return m, cmd
}

func shortcutDeleteConversation(m *Model) (tea.Model, tea.Cmd) {
	if m.convs.Deleting() {
		return m, m.flash(ui.FlashWarning, "Another delete is still in progress")
	}
	id, _ := m.sidebar.SelectedID()
	if !m.convs.RequestDelete(id) {
		return m, nil
	}
	pending, _ := m.convs.PendingConfirmation()
	m.modal.Show(modals.NewConfirmDeleteState(pending.ID, pending.Title))
	return m, nil
}

func shortcutRefresh(m *Model) (tea.Model, tea.Cmd) {
	cmd := m.runTask(m.convs.Refresh())
	m.syncViews()
	return m, cmd
}

func shortcutAttachImage(m *Model) (tea.Model, tea.Cmd) {
	m.modal.Show(modals.NewAttachImageState())
	return m, nil
}

func shortcutPasteImage(m *Model) (tea.Model, tea.Cmd) {
	cmd, _ := m.attachFromClipboard(true)
	return m, cmd
}

func shortcutRemoveImage(m *Model) (tea.Model, tea.Cmd) {
	m.session.ClearImageSelection()
	m.syncViews()
	return m, nil
}

func shortcutClearChat(m *Model) (tea.Model, tea.Cmd) {
	if !m.session.RequestClear() {
		return m, m.flash(ui.FlashInfo, "Nothing to clear")
	}
	m.modal.Show(modals.NewConfirmClearState(len(m.session.Transcript())))
	return m, nil
}

func shortcutCopyReply(m *Model) (tea.Model, tea.Cmd) {
	reply, ok := m.chat.LastReply()
	if !ok {
		return m, m.flash(ui.FlashInfo, "No reply to copy")
	}
	if err := clipboard.WriteText(reply); err != nil {
		return m, m.flash(ui.FlashError, "Clipboard unavailable")
	}
	return m, m.flash(ui.FlashSuccess, "Copied last reply")
}

func shortcutSettings(m *Model) (tea.Model, tea.Cmd) {
	var themes []modals.ThemeOption
	for _, name := range ui.ThemeNames() {
		themes = append(themes, modals.ThemeOption{Key: string(name), Name: ui.GetTheme(name).Name})
	}
	m.modal.Show(modals.NewSettingsState(themes, string(ui.CurrentThemeName()), m.config.GetNotificationsEnabled()))
	return m, nil
}

func shortcutHelp(m *Model) (tea.Model, tea.Cmd) {
	m.modal.Show(modals.NewHelpState(m.getApplicableHelpSections()))
	return m, nil
}

func shortcutQuit(m *Model) (tea.Model, tea.Cmd) {
	return m, tea.Quit
}
