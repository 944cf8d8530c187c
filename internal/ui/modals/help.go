package modals

import (
	"fmt"
	"io"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/list"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// helpRow is one line of the help list: either a section heading or a
// shortcut belonging to the heading above it.
type helpRow struct {
	section  string
	heading  bool
	shortcut HelpShortcut
}

func (r helpRow) FilterValue() string {
	if r.heading {
		return ""
	}
	return r.shortcut.Key + " " + r.shortcut.Desc + " " + r.section
}

type helpDelegate struct {
	keyWidth int
}

func (helpDelegate) Height() int                        { return 1 }
func (helpDelegate) Spacing() int                       { return 0 }
func (helpDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d helpDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	row, ok := item.(helpRow)
	if !ok {
		return
	}
	if row.heading {
		fmt.Fprint(w, lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary).Render(row.section))
		return
	}

	keyStyle := lipgloss.NewStyle().Bold(true).Width(d.keyWidth).Foreground(ColorPrimary)
	descStyle := lipgloss.NewStyle().Foreground(ColorText)
	cursor := "  "
	if index == m.Index() {
		keyStyle = keyStyle.Foreground(ColorTextInverse).Background(ColorPrimary)
		descStyle = descStyle.Foreground(ColorTextInverse).Background(ColorPrimary)
		cursor = "> "
	}
	fmt.Fprint(w, cursor+keyStyle.Render(row.shortcut.Key)+descStyle.Render(row.shortcut.Desc))
}

// HelpState lists the shortcuts available where the help modal was opened.
// Enter runs the highlighted shortcut.
type HelpState struct {
	list list.Model
}

func (*HelpState) modalState() {}

func (s *HelpState) Title() string { return "Keyboard Shortcuts" }

func (s *HelpState) Help() string {
	if s.list.SettingFilter() {
		return "Type to filter  Enter: apply  Esc: cancel"
	}
	return "/: filter  up/down: navigate  Enter: run  Esc: close"
}

func (s *HelpState) Render() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		ModalTitleStyle.Render(s.Title()),
		s.list.View(),
		ModalHelpStyle.Render(s.Help()),
	)
}

func (s *HelpState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

// SetSize fits the list between the title and the help line.
func (s *HelpState) SetSize(width, height int) {
	s.list.SetSize(width, max(height-4, 1))
}

// Selected returns the highlighted shortcut, or nil when a heading is
// highlighted or the filter matched nothing.
func (s *HelpState) Selected() *HelpShortcut {
	row, ok := s.list.SelectedItem().(helpRow)
	if !ok || row.heading {
		return nil
	}
	return &row.shortcut
}

// IsFiltering reports whether keys are going to the filter input.
func (s *HelpState) IsFiltering() bool {
	return s.list.SettingFilter()
}

// NewHelpState builds the help list from sections, in order.
func NewHelpState(sections []HelpSection) *HelpState {
	var rows []list.Item
	keyWidth := 0
	first := -1
	for _, sec := range sections {
		rows = append(rows, helpRow{section: sec.Title, heading: true})
		for _, sc := range sec.Shortcuts {
			if first < 0 {
				first = len(rows)
			}
			keyWidth = max(keyWidth, runewidth.StringWidth(sc.Key))
			rows = append(rows, helpRow{section: sec.Title, shortcut: sc})
		}
	}

	l := list.New(rows, helpDelegate{keyWidth: keyWidth + 3}, ModalWidth, HelpModalMaxVisible)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	if first >= 0 {
		l.Select(first)
	}
	return &HelpState{list: l}
}
