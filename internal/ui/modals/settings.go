package modals

import (
	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"
)

// ThemeOption is a selectable theme.
type ThemeOption struct {
	Key  string
	Name string
}

// =============================================================================
// SettingsState - State for the Settings modal
// =============================================================================

type SettingsState struct {
	selectedTheme        string
	OriginalTheme        string
	notificationsEnabled bool

	form *huh.Form
}

func (*SettingsState) modalState() {}

func (s *SettingsState) Title() string { return "Settings" }

func (s *SettingsState) Help() string {
	return "Tab: next field  Enter: save  Esc: cancel"
}

func (s *SettingsState) Render() string {
	title := ModalTitleStyle.Render(s.Title())
	help := ModalHelpStyle.Render(s.Help())
	return lipgloss.JoinVertical(lipgloss.Left, title, s.form.View(), help)
}

func (s *SettingsState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	var cmd tea.Cmd
	s.form, cmd = huhFormUpdate(s.form, msg)
	return s, cmd
}

// GetSelectedTheme returns the selected theme key.
func (s *SettingsState) GetSelectedTheme() string {
	return s.selectedTheme
}

// ThemeChanged returns true if the selected theme differs from the original.
func (s *SettingsState) ThemeChanged() bool {
	return s.selectedTheme != s.OriginalTheme
}

// GetNotificationsEnabled returns whether notifications are enabled
func (s *SettingsState) GetNotificationsEnabled() bool {
	return s.notificationsEnabled
}

// NewSettingsState creates a new SettingsState
func NewSettingsState(themes []ThemeOption, currentTheme string, notificationsEnabled bool) *SettingsState {
	s := &SettingsState{
		selectedTheme:        currentTheme,
		OriginalTheme:        currentTheme,
		notificationsEnabled: notificationsEnabled,
	}

	themeOptions := make([]huh.Option[string], len(themes))
	for i, t := range themes {
		themeOptions[i] = huh.NewOption(t.Name, t.Key)
	}

	s.form = newModalForm(
		huh.NewSelect[string]().
			Title("Theme").
			Options(themeOptions...).
			Value(&s.selectedTheme),
		huh.NewConfirm().
			Title("Desktop notifications").
			Description("Notify when a reply arrives").
			Affirmative("On").
			Negative("Off").
			Value(&s.notificationsEnabled),
	)
	return s
}
