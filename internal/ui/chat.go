package ui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/zhubert/parley/internal/keys"
	"github.com/zhubert/parley/internal/store"
)

// Chat represents the right panel with conversation view
type Chat struct {
	viewport viewport.Model
	input    textarea.Model
	width    int
	height   int
	focused  bool
	now      func() time.Time

	hasConversation bool
	loading         bool
	messages        []store.Message

	waiting       bool
	waitStartTime time.Time
	waitingVerb   string
	spinnerFrame  int

	// imageLabel describes the pending attachment; empty when none.
	imageLabel string
	imageReady bool
}

// NewChat creates a new chat panel
func NewChat() *Chat {
	ti := textarea.New()
	ti.Placeholder = "Type your message..."
	ti.CharLimit = 0
	ti.SetHeight(TextareaHeight)
	ti.ShowLineNumbers = false
	ti.Prompt = ""

	vp := viewport.New()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	c := &Chat{
		viewport: vp,
		input:    ti,
		now:      time.Now,
	}
	c.updateContent()
	return c
}

// SetSize sets the chat panel dimensions
func (c *Chat) SetSize(width, height int) {
	c.width = width
	c.height = height

	c.viewport.SetWidth(innerSize(width))
	c.viewport.SetHeight(max(innerSize(c.historyHeight()), 1))
	c.input.SetWidth(innerSize(width) - InputPaddingWidth)
	c.updateContent()
}

// historyHeight is the outer height of the transcript panel.
func (c *Chat) historyHeight() int {
	h := c.height - InputTotalHeight
	if c.imageLabel != "" {
		h -= ImageBarHeight
	}
	return h
}

// SetFocused sets the focus state
func (c *Chat) SetFocused(focused bool) {
	c.focused = focused
	if focused {
		c.input.Focus()
	} else {
		c.input.Blur()
	}
}

// IsFocused returns the focus state
func (c *Chat) IsFocused() bool {
	return c.focused
}

// SetConversation shows the open conversation's transcript. open is false
// when no conversation is active.
func (c *Chat) SetConversation(open bool, messages []store.Message, loading bool) {
	c.hasConversation = open
	c.messages = messages
	c.loading = loading
	c.updateContent()
}

// HasConversation reports whether a conversation is open.
func (c *Chat) HasConversation() bool {
	return c.hasConversation
}

// SetWaiting sets whether a reply is outstanding. The stopwatch restarts
// each time waiting begins.
func (c *Chat) SetWaiting(waiting bool) {
	if waiting && !c.waiting {
		c.waitStartTime = c.now()
		c.waitingVerb = randomWaitingVerb()
		c.spinnerFrame = 0
	}
	c.waiting = waiting
	c.updateContent()
}

// IsWaiting returns whether we're waiting for a response
func (c *Chat) IsWaiting() bool {
	return c.waiting
}

// SetImage shows the pending attachment bar. ready is false until the
// preview has been produced.
func (c *Chat) SetImage(label string, ready bool) {
	resize := (label == "") != (c.imageLabel == "")
	c.imageLabel = label
	c.imageReady = ready
	if resize {
		c.SetSize(c.width, c.height)
	}
}

// GetInput returns the current input text
func (c *Chat) GetInput() string {
	return strings.TrimSpace(c.input.Value())
}

// ClearInput clears the input field
func (c *Chat) ClearInput() {
	c.input.Reset()
}

// SetInput replaces the input text
func (c *Chat) SetInput(value string) {
	c.input.SetValue(value)
}

// LastReply returns the text of the newest assistant message.
func (c *Chat) LastReply() (string, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Sender == store.SenderBot {
			return c.messages[i].Text, true
		}
	}
	return "", false
}

func (c *Chat) updateContent() {
	wrapWidth := c.viewport.Width()
	if wrapWidth <= 0 {
		wrapWidth = DefaultWrapWidth
	}

	var sb strings.Builder
	switch {
	case !c.hasConversation:
		sb.WriteString(renderNoConversation())
	case c.loading && len(c.messages) == 0:
		sb.WriteString(StatusLoadingStyle.Render("Loading..."))
	case len(c.messages) == 0 && !c.waiting:
		sb.WriteString(renderEmptyState(wrapWidth))
	default:
		now := c.now()
		for i, msg := range c.messages {
			if i > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(renderMessage(msg, now, wrapWidth))
		}
		if c.waiting {
			if len(c.messages) > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(renderWaiting(c.waitingVerb, c.spinnerFrame, c.now().Sub(c.waitStartTime)))
		}
	}

	c.viewport.SetContent(sb.String())
	c.viewport.GotoBottom()
}

// Update handles messages
func (c *Chat) Update(msg tea.Msg) (*Chat, tea.Cmd) {
	if _, ok := msg.(StopwatchTickMsg); ok {
		if !c.waiting {
			return c, nil
		}
		c.spinnerFrame++
		c.updateContent()
		return c, StopwatchTick()
	}

	if _, ok := msg.(tea.PasteMsg); ok {
		if !c.focused {
			return c, nil
		}
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return c, cmd
	}

	if keyMsg, isKey := msg.(tea.KeyPressMsg); isKey {
		if !c.focused {
			return c, nil
		}
		switch keyMsg.String() {
		case keys.PgUp, keys.PgDown, keys.Home, keys.End:
			var cmd tea.Cmd
			c.viewport, cmd = c.viewport.Update(msg)
			return c, cmd
		case keys.ShiftEnter, keys.AltEnter:
			c.input.InsertString("\n")
			return c, nil
		}

		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return c, cmd
	}

	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	return c, cmd
}

// View renders the chat panel
func (c *Chat) View() string {
	panelStyle := PanelStyle
	if c.focused {
		panelStyle = PanelFocusedStyle
	}

	if !c.hasConversation {
		return panelStyle.Width(c.width).Height(c.height).Render(renderNoConversation())
	}

	history := panelStyle.Width(c.width).Height(c.historyHeight()).Render(c.viewport.View())

	inputStyle := ChatInputStyle
	if c.focused {
		inputStyle = ChatInputFocusedStyle
	}
	input := inputStyle.Width(c.width).Render(c.input.View())

	if c.imageLabel == "" {
		return lipgloss.JoinVertical(lipgloss.Left, history, input)
	}
	return lipgloss.JoinVertical(lipgloss.Left, history, c.renderImageBar(), input)
}

// renderImageBar shows the pending attachment with its remove key.
func (c *Chat) renderImageBar() string {
	status := "ready"
	if !c.imageReady {
		status = "preparing..."
	}
	bar := ChatImageStyle.Render("📎 "+c.imageLabel+" ("+status+")") + "  " +
		FooterKeyStyle.Render("ctrl+x") + FooterDescStyle.Render(" remove")
	return " " + ansi.Truncate(bar, max(c.width-2, 1), "…")
}
