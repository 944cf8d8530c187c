package modals

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/parley/internal/keys"
)

// confirmChoice is the shared two-option picker behind the confirm modals.
// Index 0 always cancels.
type confirmChoice struct {
	Options       []string
	SelectedIndex int
}

func (c *confirmChoice) update(msg tea.Msg) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return
	}
	switch keyMsg.String() {
	case keys.Up, "k", keys.ShiftTab:
		if c.SelectedIndex > 0 {
			c.SelectedIndex--
		}
	case keys.Down, "j", keys.Tab:
		if c.SelectedIndex < len(c.Options)-1 {
			c.SelectedIndex++
		}
	case "y":
		c.SelectedIndex = len(c.Options) - 1
	case "n":
		c.SelectedIndex = 0
	}
}

// Confirmed reports whether the destructive option is selected.
func (c *confirmChoice) Confirmed() bool {
	return c.SelectedIndex == len(c.Options)-1
}

// =============================================================================
// ConfirmDeleteState - State for the Delete Conversation modal
// =============================================================================

type ConfirmDeleteState struct {
	ConversationID    string
	ConversationTitle string
	confirmChoice
}

func (*ConfirmDeleteState) modalState() {}

func (s *ConfirmDeleteState) Title() string { return "Delete Conversation?" }

func (s *ConfirmDeleteState) Help() string {
	return "up/down or y/n to select, Enter to confirm, Esc to cancel"
}

func (s *ConfirmDeleteState) Render() string {
	title := ModalTitleStyle.Render(s.Title())

	label := lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true).
		MarginBottom(1).
		Render(TruncateString(s.ConversationTitle, ModalInputWidth))

	message := lipgloss.NewStyle().
		Foreground(ColorText).
		MarginBottom(1).
		Render("The conversation and all of its messages will be removed.")

	help := ModalHelpStyle.Render(s.Help())

	return lipgloss.JoinVertical(lipgloss.Left, title, label, message, RenderSelectableList(s.Options, s.SelectedIndex), help)
}

func (s *ConfirmDeleteState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	s.update(msg)
	return s, nil
}

// NewConfirmDeleteState creates a new ConfirmDeleteState
func NewConfirmDeleteState(id, title string) *ConfirmDeleteState {
	return &ConfirmDeleteState{
		ConversationID:    id,
		ConversationTitle: title,
		confirmChoice:     confirmChoice{Options: []string{"Cancel", "Delete"}},
	}
}

// =============================================================================
// ConfirmClearState - State for the Clear Chat modal
// =============================================================================

type ConfirmClearState struct {
	MessageCount int
	confirmChoice
}

func (*ConfirmClearState) modalState() {}

func (s *ConfirmClearState) Title() string { return "Clear Chat?" }

func (s *ConfirmClearState) Help() string {
	return "up/down or y/n to select, Enter to confirm, Esc to cancel"
}

func (s *ConfirmClearState) Render() string {
	title := ModalTitleStyle.Render(s.Title())

	noun := "messages"
	if s.MessageCount == 1 {
		noun = "message"
	}
	message := lipgloss.NewStyle().
		Foreground(ColorText).
		MarginBottom(1).
		Render(fmt.Sprintf("This will permanently delete %d %s from this conversation.", s.MessageCount, noun))

	help := ModalHelpStyle.Render(s.Help())

	return lipgloss.JoinVertical(lipgloss.Left, title, message, RenderSelectableList(s.Options, s.SelectedIndex), help)
}

func (s *ConfirmClearState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	s.update(msg)
	return s, nil
}

// NewConfirmClearState creates a new ConfirmClearState
func NewConfirmClearState(messageCount int) *ConfirmClearState {
	return &ConfirmClearState{
		MessageCount:  messageCount,
		confirmChoice: confirmChoice{Options: []string{"Cancel", "Clear Chat"}},
	}
}
