package modals

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func press(s ModalState, code rune) ModalState {
	next, _ := s.Update(tea.KeyPressMsg{Code: code, Text: string(code)})
	return next
}

func TestConfirmDeleteState(t *testing.T) {
	s := NewConfirmDeleteState("c1", "Trip planning")

	if s.Confirmed() {
		t.Fatal("delete modal should default to Cancel")
	}
	if !strings.Contains(s.Render(), "Trip planning") {
		t.Error("render should include the conversation title")
	}

	press(s, 'j')
	if !s.Confirmed() {
		t.Error("moving down should select Delete")
	}
	press(s, 'j')
	if s.SelectedIndex != 1 {
		t.Errorf("selection should stop at the last option, got %d", s.SelectedIndex)
	}
	press(s, 'n')
	if s.Confirmed() {
		t.Error("n should select Cancel")
	}
	press(s, 'y')
	if !s.Confirmed() {
		t.Error("y should select Delete")
	}
}

func TestConfirmClearState(t *testing.T) {
	s := NewConfirmClearState(1)
	if !strings.Contains(s.Render(), "1 message ") {
		t.Errorf("expected singular noun, got %q", s.Render())
	}

	s = NewConfirmClearState(4)
	if !strings.Contains(s.Render(), "4 messages") {
		t.Errorf("expected plural noun, got %q", s.Render())
	}
	if s.Confirmed() {
		t.Error("clear modal should default to Cancel")
	}
}

func TestAttachImageState_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.png")

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewAttachImageState()
	if _, err := s.Load(); err == nil {
		t.Error("empty path should fail")
	}

	s.path = path
	img, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Name != "shot.png" || img.Width != 3 || img.Height != 2 {
		t.Errorf("unexpected image %+v", img)
	}
}

func TestSettingsState_ThemeChanged(t *testing.T) {
	themes := []ThemeOption{{Key: "dark-purple", Name: "Dark Purple"}, {Key: "nord", Name: "Nord"}}
	s := NewSettingsState(themes, "nord", true)

	if s.ThemeChanged() {
		t.Error("theme should be unchanged initially")
	}
	if !s.GetNotificationsEnabled() {
		t.Error("notifications should start enabled")
	}

	s.selectedTheme = "dark-purple"
	if !s.ThemeChanged() || s.GetSelectedTheme() != "dark-purple" {
		t.Error("expected theme change to dark-purple")
	}
}

func TestHelpState_StartsOnShortcut(t *testing.T) {
	s := NewHelpState([]HelpSection{
		{Title: "Sidebar", Shortcuts: []HelpShortcut{{Key: "n", Desc: "new conversation"}}},
		{Title: "Chat", Shortcuts: []HelpShortcut{{Key: "enter", Desc: "send"}}},
	})

	sel := s.Selected()
	if sel == nil || sel.Key != "n" {
		t.Fatalf("expected first shortcut selected, got %+v", sel)
	}
	if s.IsFiltering() {
		t.Error("should not start filtering")
	}
	if !strings.Contains(s.Render(), "Keyboard Shortcuts") {
		t.Error("render should include title")
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := TruncateString("a very long title", 8); got != "a ver..." {
		t.Errorf("got %q", got)
	}
}
