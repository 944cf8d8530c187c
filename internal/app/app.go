package app

import (
	"context"
	"net/url"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/conversations"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/session"
	"github.com/zhubert/parley/internal/store"
	"github.com/zhubert/parley/internal/ui"
)

// The session controller answers the sidebar's select, create and delete hooks.
var _ conversations.Hooks = (*session.Controller)(nil)

// Focus represents which panel is focused
type Focus int

const (
	FocusSidebar Focus = iota
	FocusChat
)

// String returns a human-readable name for the focus
func (f Focus) String() string {
	switch f {
	case FocusSidebar:
		return "Sidebar"
	case FocusChat:
		return "Chat"
	default:
		return "Unknown"
	}
}

// Model is the main Bubble Tea model. It owns the session controller and the
// conversation list and runs their tasks as commands.
type Model struct {
	config   *config.Config
	version  string
	ctx      context.Context
	now      func() time.Time
	identity string

	header  *ui.Header
	footer  *ui.Footer
	sidebar *ui.Sidebar
	chat    *ui.Chat
	modal   *ui.Modal

	width  int
	height int
	focus  Focus

	session *session.Controller
	convs   *conversations.Manager

	// refreshPending is set by the session's activity hook while a result
	// is applied; the list refresh is issued once the result is folded in.
	refreshPending bool
}

// Option configures a Model.
type Option func(*Model)

// WithContext sets the parent context of every task. Cancelling it aborts
// requests in flight.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithVersion sets the version shown in the help modal.
func WithVersion(version string) Option {
	return func(m *Model) { m.version = version }
}

// WithClock overrides the clock used for message stamps and list dates.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithIdentity sets who the token belongs to, shown next to the host.
func WithIdentity(label string) Option {
	return func(m *Model) { m.identity = label }
}

// New creates the app model backed by s.
func New(cfg *config.Config, s store.Store, opts ...Option) *Model {
	// Load saved theme from config, or use default
	if savedTheme := cfg.GetTheme(); savedTheme != "" {
		ui.SetThemeByName(savedTheme)
	}

	m := &Model{
		config:  cfg,
		ctx:     context.Background(),
		now:     time.Now,
		header:  ui.NewHeader(),
		footer:  ui.NewFooter(),
		sidebar: ui.NewSidebar(),
		chat:    ui.NewChat(),
		modal:   ui.NewModal(),
		focus:   FocusSidebar,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.session = session.New(s,
		session.WithClock(m.now),
		session.WithActivityHook(m.onActivity),
	)
	m.convs = conversations.New(s, m.session)

	m.header.SetHost(m.hostLabel())
	m.sidebar.SetFocused(true)
	m.syncViews()
	return m
}

// hostLabel names the service in the header, prefixed by the identity
// when one is known.
func (m *Model) hostLabel() string {
	host := m.config.GetAPIURL()
	if u, err := url.Parse(host); err == nil && u.Host != "" {
		host = u.Host
	}
	if m.identity != "" {
		return m.identity + " @ " + host
	}
	return host
}

// onActivity runs on the event loop while a session result is applied.
func (m *Model) onActivity(conversationID string) {
	logger.WithConversation(conversationID).Debug("activity; list refresh queued")
	m.refreshPending = true
}

// Session returns the session controller.
func (m *Model) Session() *session.Controller {
	return m.session
}

// Conversations returns the conversation list manager.
func (m *Model) Conversations() *conversations.Manager {
	return m.convs
}

// Focus returns the focused panel.
func (m *Model) Focus() Focus {
	return m.focus
}

// StartupModalMsg is sent on app start to trigger the welcome modal
type StartupModalMsg struct{}

// Init opens the most recent conversation and loads the list.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.runTask(m.session.Initialize()),
		m.runTask(m.convs.Refresh()),
		func() tea.Msg { return StartupModalMsg{} },
	)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case taskResultMsg:
		return m.handleTaskResult(msg)

	case StartupModalMsg:
		return m.handleStartupModals()

	case ui.FlashTickMsg:
		m.footer.ClearIfExpired()
		if m.footer.HasFlash() {
			return m, ui.FlashTick()
		}
		return m, nil

	case ui.StopwatchTickMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case shortcutTriggeredMsg:
		result, cmd, _ := m.ExecuteShortcut(msg.key)
		return result, cmd

	case tea.PasteStartMsg:
		// Terminals often turn ctrl+v into a bracketed paste; an image on the
		// clipboard wins over the text that follows.
		if m.focus == FocusChat && m.canCompose() {
			if cmd, attached := m.attachFromClipboard(false); attached {
				return m, cmd
			}
		}
		return m, nil

	case tea.PasteMsg:
		if m.modal.IsVisible() {
			modal, cmd := m.modal.Update(msg)
			m.modal = modal
			return m, cmd
		}
		if m.focus == FocusChat {
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseWheelMsg:
		if m.modal.IsVisible() {
			return m, nil
		}
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	if m.modal.IsVisible() {
		modal, cmd := m.modal.Update(msg)
		m.modal = modal
		return m, cmd
	}
	return m, nil
}

// canCompose reports whether the composer can take a message or image.
func (m *Model) canCompose() bool {
	return m.session.ActiveConversationID() != "" && !m.session.Sending()
}

// setFocus moves focus between the panels.
func (m *Model) setFocus(f Focus) {
	if f == FocusChat && m.session.ActiveConversationID() == "" {
		f = FocusSidebar
	}
	m.focus = f
	m.sidebar.SetFocused(f == FocusSidebar)
	m.chat.SetFocused(f == FocusChat)
	m.syncFooter()
}
