package modals

import (
	"image/color"

	"charm.land/bubbles/v2/help"
	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/parley/internal/keys"
)

// newModalForm wraps fields in a single-group form styled like the other
// modals. The form is initialized so its first render is complete.
func newModalForm(fields ...huh.Field) *huh.Form {
	form := huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(modalTheme()).
		WithShowHelp(false).
		WithWidth(ModalInputWidth).
		WithLayout(huh.LayoutStack)
	form.Init()
	return form
}

// huhFormUpdate forwards msg to form. Enter and Esc belong to the app's
// modal handlers, so the form never sees them.
func huhFormUpdate(form *huh.Form, msg tea.Msg) (*huh.Form, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok && (k.String() == keys.Enter || k.String() == keys.Escape) {
		return form, nil
	}
	m, cmd := form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		form = f
	}
	return form, cmd
}

// modalTheme reads the palette at call time, so forms built after a theme
// switch pick up the new colors.
func modalTheme() huh.Theme {
	return huh.ThemeFunc(func(isDark bool) *huh.Styles {
		fg := func(c color.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
		primary, text, muted := fg(ColorPrimary), fg(ColorText), fg(ColorTextMuted)
		button := lipgloss.NewStyle().Padding(0, 2).MarginRight(1)

		t := huh.ThemeBase(isDark)
		f := &t.Focused
		f.Base = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(ColorPrimary)
		f.Card = f.Base
		f.Title = text.Bold(true)
		f.Description = muted.Italic(true)
		f.ErrorIndicator = fg(ColorWarning).SetString(" *")
		f.ErrorMessage = fg(ColorWarning)
		f.SelectSelector = primary.SetString("> ")
		f.NextIndicator = primary.MarginLeft(1).SetString("→")
		f.PrevIndicator = primary.MarginRight(1).SetString("←")
		f.Option = text
		f.SelectedOption = fg(ColorSecondary)
		f.FocusedButton = button.Foreground(ColorTextInverse).Background(ColorPrimary)
		f.BlurredButton = button.Foreground(ColorTextMuted)
		f.TextInput.Cursor = primary
		f.TextInput.Prompt = primary
		f.TextInput.Placeholder = muted
		f.TextInput.Text = text

		t.Blurred = t.Focused
		t.Blurred.Base = lipgloss.NewStyle().PaddingLeft(2)
		t.Blurred.Card = t.Blurred.Base
		t.Blurred.NextIndicator = lipgloss.NewStyle()
		t.Blurred.PrevIndicator = lipgloss.NewStyle()

		t.Group.Title = fg(ColorSecondary).Bold(true)
		t.Group.Description = muted
		t.FieldSeparator = lipgloss.NewStyle().SetString("\n")
		t.Help = help.New().Styles
		return t
	})
}
