package ui

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/zhubert/parley/internal/store"
)

var sidebarNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.Local)

func testSummaries() []store.Summary {
	return []store.Summary{
		{ID: "c1", Title: "Trip planning", UpdatedAt: sidebarNow.Add(-time.Hour)},
		{ID: "c2", Title: "Recipes", UpdatedAt: sidebarNow.Add(-26 * time.Hour)},
		{ID: "c3", Title: "", UpdatedAt: sidebarNow.Add(-10 * 24 * time.Hour)},
	}
}

func keyPress(s string) tea.KeyPressMsg {
	switch s {
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "shift+enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter, Mod: tea.ModShift}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestNewSidebar(t *testing.T) {
	s := NewSidebar()
	if !s.IsFocused() {
		t.Error("sidebar should start focused")
	}
	if !s.IsNewChatSelected() {
		t.Error("new chat row should be selected initially")
	}
	if _, ok := s.SelectedID(); ok {
		t.Error("no conversation should be selected initially")
	}
}

func TestSidebar_Navigation(t *testing.T) {
	s := NewSidebar()
	s.SetSummaries(testSummaries(), sidebarNow)

	s.Update(keyPress("j"))
	if id, ok := s.SelectedID(); !ok || id != "c1" {
		t.Fatalf("after j selected = %q, %v", id, ok)
	}

	s.Update(keyPress("down"))
	if id, _ := s.SelectedID(); id != "c2" {
		t.Errorf("after down selected = %q", id)
	}

	s.Update(keyPress("G"))
	if id, _ := s.SelectedID(); id != "c3" {
		t.Errorf("after G selected = %q", id)
	}

	// Bottom stays put
	s.Update(keyPress("j"))
	if id, _ := s.SelectedID(); id != "c3" {
		t.Errorf("moving past the end selected = %q", id)
	}

	s.Update(keyPress("g"))
	if !s.IsNewChatSelected() {
		t.Error("g should select the new chat row")
	}

	s.Update(keyPress("k"))
	if !s.IsNewChatSelected() {
		t.Error("moving past the top should stay on the new chat row")
	}
}

func TestSidebar_IgnoresKeysWhenUnfocused(t *testing.T) {
	s := NewSidebar()
	s.SetSummaries(testSummaries(), sidebarNow)
	s.SetFocused(false)

	s.Update(keyPress("j"))
	if !s.IsNewChatSelected() {
		t.Error("unfocused sidebar should ignore navigation")
	}
}

func TestSidebar_SetSummariesKeepsSelection(t *testing.T) {
	s := NewSidebar()
	s.SetSummaries(testSummaries(), sidebarNow)
	s.SelectConversation("c2")

	// c2 moves to the top after an update
	reordered := []store.Summary{
		{ID: "c2", Title: "Recipes", UpdatedAt: sidebarNow},
		{ID: "c1", Title: "Trip planning", UpdatedAt: sidebarNow.Add(-time.Hour)},
	}
	s.SetSummaries(reordered, sidebarNow)

	if id, _ := s.SelectedID(); id != "c2" {
		t.Errorf("selection should follow c2, got %q", id)
	}
}

func TestSidebar_SetSummariesClampsSelection(t *testing.T) {
	s := NewSidebar()
	s.SetSummaries(testSummaries(), sidebarNow)
	s.SelectConversation("c3")

	s.SetSummaries(testSummaries()[:1], sidebarNow)
	if id, ok := s.SelectedID(); !ok || id != "c1" {
		t.Errorf("selection should clamp to the last row, got %q, %v", id, ok)
	}
}

func TestSidebar_View(t *testing.T) {
	s := NewSidebar()
	s.SetSize(40, 20)
	s.SetSummaries(testSummaries(), sidebarNow)
	s.SetActive("c1")

	view := ansi.Strip(s.View())
	for _, want := range []string{"Conversations", newChatLabel, "Trip planning", "Recipes", store.DefaultTitle, "●"} {
		if !strings.Contains(view, want) {
			t.Errorf("sidebar view missing %q", want)
		}
	}
}

func TestSidebar_StatusLines(t *testing.T) {
	s := NewSidebar()
	s.SetSize(40, 20)

	s.SetLoading(true, false)
	if view := ansi.Strip(s.View()); !strings.Contains(view, "Loading...") {
		t.Errorf("expected loading status, got %q", view)
	}

	s.SetLoading(false, true)
	if view := ansi.Strip(s.View()); !strings.Contains(view, "No conversations yet") {
		t.Errorf("expected empty status, got %q", view)
	}

	// A refresh after the first load keeps the list rather than flashing loading
	s.SetLoading(true, true)
	if view := ansi.Strip(s.View()); strings.Contains(view, "Loading...") {
		t.Errorf("loaded sidebar should not show loading, got %q", view)
	}
}

func TestSidebar_TruncatesLongTitles(t *testing.T) {
	s := NewSidebar()
	s.SetSize(24, 10)
	s.SetSummaries([]store.Summary{{
		ID:        "c1",
		Title:     "An extremely long conversation title that overflows",
		UpdatedAt: sidebarNow,
	}}, sidebarNow)

	view := ansi.Strip(s.View())
	if !strings.Contains(view, "…") {
		t.Errorf("long title should be truncated, got %q", view)
	}
}
