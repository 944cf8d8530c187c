package modals

import (
	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/parley/internal/attachment"
	"github.com/zhubert/parley/internal/store"
)

// =============================================================================
// AttachImageState - State for the Attach Image modal
// =============================================================================

type AttachImageState struct {
	path string
	form *huh.Form
}

func (*AttachImageState) modalState() {}

func (s *AttachImageState) Title() string { return "Attach Image" }

func (s *AttachImageState) Help() string {
	return "Enter: attach  Esc: cancel"
}

func (s *AttachImageState) Render() string {
	title := ModalTitleStyle.Render(s.Title())
	help := ModalHelpStyle.Render(s.Help())
	return lipgloss.JoinVertical(lipgloss.Left, title, s.form.View(), help)
}

func (s *AttachImageState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	var cmd tea.Cmd
	s.form, cmd = huhFormUpdate(s.form, msg)
	return s, cmd
}

// Path returns the entered path.
func (s *AttachImageState) Path() string {
	return s.path
}

// Load reads and validates the image at the entered path.
func (s *AttachImageState) Load() (store.Image, error) {
	return attachment.FromFile(s.path)
}

// NewAttachImageState creates a new AttachImageState
func NewAttachImageState() *AttachImageState {
	s := &AttachImageState{}
	s.form = newModalForm(
		huh.NewInput().
			Title("Image file").
			Description("PNG, JPEG, GIF or WebP, up to 5 MiB").
			Placeholder("~/Pictures/screenshot.png").
			CharLimit(ModalInputCharLimit).
			Value(&s.path),
	)
	return s
}
