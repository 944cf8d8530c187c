package modals

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// =============================================================================
// WelcomeState - State for the first-time user welcome modal
// =============================================================================

type WelcomeState struct {
	APIURL string
}

func (*WelcomeState) modalState() {}

func (s *WelcomeState) Title() string { return "Welcome to parley!" }

func (s *WelcomeState) Help() string {
	return "Press Enter or Esc to continue"
}

func (s *WelcomeState) Render() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSecondary).
		MarginBottom(1).
		Render(s.Title())

	intro := lipgloss.NewStyle().
		Foreground(ColorText).
		Width(50).
		Render("Chat with the assistant, send it images, and pick up past conversations from the sidebar.")

	gettingStarted := lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		MarginTop(1).
		Render("Getting started:")

	shortcuts := lipgloss.NewStyle().
		Foreground(ColorText).
		Render("  n       Start a new conversation\n  Tab     Switch between sidebar and chat\n  ctrl+o  Attach an image\n  ?       All shortcuts")

	var server string
	if s.APIURL != "" {
		server = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			MarginTop(1).
			Render("Connected to " + s.APIURL)
	}

	help := ModalHelpStyle.Render(s.Help())

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		intro,
		gettingStarted,
		shortcuts,
		server,
		help,
	)
}

func (s *WelcomeState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	return s, nil
}

// NewWelcomeState creates a new WelcomeState
func NewWelcomeState(apiURL string) *WelcomeState {
	return &WelcomeState{APIURL: apiURL}
}
