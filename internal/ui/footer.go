package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key  string
	Desc string
}

// FlashType selects the color of a flash message.
type FlashType int

const (
	FlashInfo FlashType = iota
	FlashSuccess
	FlashWarning
	FlashError
)

// FlashMessage is a transient footer notice.
type FlashMessage struct {
	Text      string
	Type      FlashType
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the message has outlived its duration.
func (m *FlashMessage) IsExpired() bool {
	return time.Since(m.CreatedAt) >= m.Duration
}

// FlashTickMsg drives flash expiry.
type FlashTickMsg time.Time

// FlashTick returns a command that checks flash expiry once a second.
func FlashTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return FlashTickMsg(t)
	})
}

// Footer represents the bottom footer bar with keybindings
type Footer struct {
	width          int
	sidebarFocused bool
	hasSession     bool
	hasImage       bool
	sending        bool
	flashMessage   *FlashMessage
}

// NewFooter creates a new footer
func NewFooter() *Footer {
	return &Footer{sidebarFocused: true}
}

// SetContext updates the footer's context for conditional bindings
func (f *Footer) SetContext(sidebarFocused, hasSession, hasImage, sending bool) {
	f.sidebarFocused = sidebarFocused
	f.hasSession = hasSession
	f.hasImage = hasImage
	f.sending = sending
}

// SetWidth sets the footer width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetFlash shows text for DefaultFlashDuration.
func (f *Footer) SetFlash(text string, flashType FlashType) {
	f.SetFlashWithDuration(text, flashType, DefaultFlashDuration)
}

// SetFlashWithDuration shows text for d.
func (f *Footer) SetFlashWithDuration(text string, flashType FlashType, d time.Duration) {
	f.flashMessage = &FlashMessage{
		Text:      text,
		Type:      flashType,
		CreatedAt: time.Now(),
		Duration:  d,
	}
}

// ClearFlash removes the flash message.
func (f *Footer) ClearFlash() {
	f.flashMessage = nil
}

// HasFlash reports whether a flash message is showing.
func (f *Footer) HasFlash() bool {
	return f.flashMessage != nil
}

// ClearIfExpired removes an expired flash message and reports whether it did.
func (f *Footer) ClearIfExpired() bool {
	if f.flashMessage != nil && f.flashMessage.IsExpired() {
		f.flashMessage = nil
		return true
	}
	return false
}

// Bindings returns the shortcuts relevant to the current context.
func (f *Footer) Bindings() []KeyBinding {
	if f.sidebarFocused {
		bindings := []KeyBinding{
			{Key: "n", Desc: "new chat"},
			{Key: "enter", Desc: "open"},
			{Key: "d", Desc: "delete"},
		}
		if f.hasSession {
			bindings = append(bindings, KeyBinding{Key: "tab", Desc: "chat"})
		}
		return append(bindings,
			KeyBinding{Key: "?", Desc: "help"},
			KeyBinding{Key: "q", Desc: "quit"},
		)
	}

	if f.sending {
		return []KeyBinding{
			{Key: "tab", Desc: "sidebar"},
			{Key: "pgup/dn", Desc: "scroll"},
		}
	}

	bindings := []KeyBinding{{Key: "enter", Desc: "send"}}
	if f.hasImage {
		bindings = append(bindings, KeyBinding{Key: "ctrl+x", Desc: "remove image"})
	} else {
		bindings = append(bindings,
			KeyBinding{Key: "ctrl+o", Desc: "attach"},
			KeyBinding{Key: "ctrl+v", Desc: "paste image"},
		)
	}
	return append(bindings,
		KeyBinding{Key: "ctrl+l", Desc: "clear"},
		KeyBinding{Key: "ctrl+y", Desc: "copy reply"},
		KeyBinding{Key: "tab", Desc: "sidebar"},
	)
}

// View renders the footer
func (f *Footer) View() string {
	if f.flashMessage != nil {
		return FooterStyle.Width(f.width).Render(f.renderFlash())
	}

	var parts []string
	for _, b := range f.Bindings() {
		key := FooterKeyStyle.Render(b.Key)
		desc := FooterDescStyle.Render(": " + b.Desc)
		parts = append(parts, key+desc)
	}
	content := strings.Join(parts, "  "+lipgloss.NewStyle().Foreground(ColorBorder).Render("|")+"  ")

	// Drop trailing bindings rather than wrapping onto a second line
	if limit := f.width - 2; limit > 0 && ansi.StringWidth(content) > limit {
		content = ansi.Truncate(content, limit, "…")
	}
	return FooterStyle.Width(f.width).Render(content)
}

func (f *Footer) renderFlash() string {
	var icon string
	c := ColorSecondary
	switch f.flashMessage.Type {
	case FlashError:
		icon, c = "✗ ", ColorError
	case FlashWarning:
		icon, c = "! ", ColorWarning
	case FlashSuccess:
		icon, c = "✓ ", ColorSuccess
	default:
		icon = "• "
	}
	text := icon + f.flashMessage.Text
	if limit := f.width - 2; limit > 0 {
		text = ansi.Truncate(text, limit, "…")
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(text)
}
