package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/zhubert/parley/internal/conversations"
	"github.com/zhubert/parley/internal/keys"
	"github.com/zhubert/parley/internal/store"
)

const newChatLabel = "+ New Chat"

// sidebarItem is one selectable row. The first row is always the new chat
// action; the rest are conversations.
type sidebarItem struct {
	newChat bool
	summary store.Summary
	date    string
}

// Sidebar represents the left panel with the conversation list
type Sidebar struct {
	items        []sidebarItem
	activeID     string
	selectedIdx  int
	scrollOffset int
	width        int
	height       int
	focused      bool
	loading      bool
	loaded       bool
}

// NewSidebar creates a new sidebar
func NewSidebar() *Sidebar {
	return &Sidebar{
		items:   []sidebarItem{{newChat: true}},
		focused: true,
	}
}

// SetSize sets the sidebar dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Width returns the sidebar width
func (s *Sidebar) Width() int {
	return s.width
}

// SetFocused sets the focus state
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// IsFocused returns the focus state
func (s *Sidebar) IsFocused() bool {
	return s.focused
}

// SetLoading sets the list state: loading while a refresh is in flight,
// loaded once any refresh has succeeded.
func (s *Sidebar) SetLoading(loading, loaded bool) {
	s.loading = loading
	s.loaded = loaded
}

// SetActive marks the open conversation.
func (s *Sidebar) SetActive(id string) {
	s.activeID = id
}

// SetSummaries replaces the list. The selection follows the previously
// selected conversation when it is still listed.
func (s *Sidebar) SetSummaries(summaries []store.Summary, now time.Time) {
	prev, hadPrev := s.SelectedID()

	s.items = s.items[:0]
	s.items = append(s.items, sidebarItem{newChat: true})
	for _, sum := range summaries {
		s.items = append(s.items, sidebarItem{
			summary: sum,
			date:    conversations.FormatSummaryDate(sum.UpdatedAt, now),
		})
	}

	if hadPrev {
		for i, it := range s.items {
			if !it.newChat && it.summary.ID == prev {
				s.selectedIdx = i
				return
			}
		}
	}
	s.selectedIdx = min(s.selectedIdx, len(s.items)-1)
}

// SelectedID returns the selected conversation. ok is false when the new
// chat row is selected.
func (s *Sidebar) SelectedID() (id string, ok bool) {
	if s.selectedIdx <= 0 || s.selectedIdx >= len(s.items) {
		return "", false
	}
	return s.items[s.selectedIdx].summary.ID, true
}

// IsNewChatSelected reports whether the new chat row is selected.
func (s *Sidebar) IsNewChatSelected() bool {
	return s.selectedIdx == 0
}

// SelectConversation moves the selection to id if it is listed.
func (s *Sidebar) SelectConversation(id string) {
	for i, it := range s.items {
		if !it.newChat && it.summary.ID == id {
			s.selectedIdx = i
			return
		}
	}
}

// Update handles navigation keys while focused
func (s *Sidebar) Update(msg tea.Msg) (*Sidebar, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok || !s.focused {
		return s, nil
	}

	switch keyMsg.String() {
	case keys.Up, "k":
		if s.selectedIdx > 0 {
			s.selectedIdx--
		}
	case keys.Down, "j":
		if s.selectedIdx < len(s.items)-1 {
			s.selectedIdx++
		}
	case keys.Home, "g":
		s.selectedIdx = 0
	case keys.End, "G":
		s.selectedIdx = len(s.items) - 1
	}
	return s, nil
}

// View renders the sidebar
func (s *Sidebar) View() string {
	style := PanelStyle
	if s.focused {
		style = PanelFocusedStyle
	}
	innerWidth := innerSize(s.width)
	innerHeight := innerSize(s.height)

	title := PanelTitleStyle.Render("Conversations")
	lines := []string{title}
	selectedLine := 0

	for i, it := range s.items {
		if i == s.selectedIdx {
			selectedLine = len(lines)
		}
		lines = append(lines, s.renderItem(it, i == s.selectedIdx, innerWidth))

		if it.newChat {
			if status := s.statusLine(); status != "" {
				lines = append(lines, status)
			}
		}
	}

	// Keep the selected row visible; the title row scrolls with the list
	visible := max(innerHeight, 1)
	if selectedLine < s.scrollOffset {
		s.scrollOffset = selectedLine
	} else if selectedLine >= s.scrollOffset+visible {
		s.scrollOffset = selectedLine - visible + 1
	}
	s.scrollOffset = max(min(s.scrollOffset, len(lines)-visible), 0)

	lines = lines[s.scrollOffset:]
	if len(lines) > visible {
		lines = lines[:visible]
	}

	return style.Width(s.width).Height(s.height).Render(strings.Join(lines, "\n"))
}

// statusLine explains an empty list.
func (s *Sidebar) statusLine() string {
	if len(s.items) > 1 {
		return ""
	}
	muted := lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true).Padding(0, 1)
	switch {
	case s.loading && !s.loaded:
		return muted.Render("Loading...")
	case s.loaded:
		return muted.Render("No conversations yet")
	}
	return ""
}

func (s *Sidebar) renderItem(it sidebarItem, selected bool, width int) string {
	// Padding(0, 1) on item styles takes two cells
	avail := max(width-2, 1)

	if it.newChat {
		st := SidebarActionStyle
		if selected {
			st = SidebarSelectedStyle
		}
		return st.Width(width).Render(newChatLabel)
	}

	marker := "  "
	if it.summary.ID == s.activeID {
		marker = "● "
	}
	if selected {
		marker = "> "
	}

	date := it.date
	titleWidth := avail - runewidth.StringWidth(marker)
	if date != "" {
		titleWidth -= runewidth.StringWidth(date) + 1
	}
	if titleWidth < 4 {
		date = ""
		titleWidth = avail - runewidth.StringWidth(marker)
	}

	title := it.summary.Title
	if title == "" {
		title = store.DefaultTitle
	}
	title = runewidth.Truncate(title, titleWidth, "…")
	title = runewidth.FillRight(title, titleWidth)

	st := SidebarItemStyle
	switch {
	case selected:
		st = SidebarSelectedStyle
	case it.summary.ID == s.activeID:
		st = SidebarActiveStyle
	}

	switch {
	case date == "":
		return st.Width(width).Render(marker + title)
	case selected:
		return st.Width(width).Render(marker + title + " " + date)
	default:
		// The padding's trailing cell separates the title from the date
		return st.Render(marker+title) + SidebarDateStyle.Render(date) + " "
	}
}
