// Package ui provides the Bubble Tea views of the parley TUI.
//
// # Layout
//
//	┌─────────────────────────────────────────────────────┐
//	│ Header (1 line)                                     │
//	├─────────────────┬───────────────────────────────────┤
//	│                 │                                   │
//	│   Sidebar       │         Chat Panel                │
//	│   (1/3 width)   │         (2/3 width)               │
//	│                 │                                   │
//	├─────────────────┴───────────────────────────────────┤
//	│ Footer (1 line)                                     │
//	└─────────────────────────────────────────────────────┘
//
// # Components
//
// Layout: ComputeLayout turns a terminal size into panel sizes. It is a
// pure function, so several models can render side by side.
//
// Header: the app title, the open conversation's title and the service host,
// on a gradient built from the theme's primary color.
//
// Footer: context-aware shortcuts, replaced by flash messages while one is
// showing.
//
// Sidebar: the "+ New Chat" action followed by conversation summaries with
// their date labels.
//
// Chat: transcript viewport, the pending image bar and the input textarea.
// Assistant replies are rendered as light markdown with chroma highlighting
// for fenced code.
//
// Modal: a centered container for the states in the modals package.
//
// The views only display state. The app package owns the session controller
// and the conversation list and copies their state in after every change.
package ui
