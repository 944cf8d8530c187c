package ui

import (
	"fmt"
	"math/rand"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// StopwatchTickMsg is sent to update the animated waiting display
type StopwatchTickMsg time.Time

// waitingVerbs cycle while a reply is outstanding
var waitingVerbs = []string{
	"Thinking",
	"Reasoning",
	"Pondering",
	"Considering",
	"Analyzing",
	"Composing",
	"Formulating",
	"Brewing",
}

// randomWaitingVerb returns a random verb from the list
func randomWaitingVerb() string {
	return waitingVerbs[rand.Intn(len(waitingVerbs))]
}

// spinnerFrames are the characters used for the waiting spinner
var spinnerFrames = []string{"·", "✺", "✹", "✸", "✷", "✶", "✵", "✴", "✳", "✲", "✱", "✧", "✦", "·"}

// StopwatchTick returns a command that sends a tick message after a delay
func StopwatchTick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return StopwatchTickMsg(t)
	})
}

// formatElapsed formats a duration as a stopwatch string (e.g., "1.2s", "1:23")
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// renderWaiting renders the spinner, the verb and the stopwatch.
func renderWaiting(verb string, frame int, elapsed time.Duration) string {
	spinner := lipgloss.NewStyle().
		Foreground(ColorUser).
		Bold(true).
		Render(spinnerFrames[frame%len(spinnerFrames)])
	stopwatch := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Render(formatElapsed(elapsed))
	return spinner + " " + StatusLoadingStyle.Render(verb+"... ") + stopwatch
}
