// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notification

import (
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/zhubert/parley/internal/logger"
)

// maxPreview bounds how much of a reply is shown in the notification body.
const maxPreview = 120

// notify is swapped out in tests.
var notify = beeep.Notify

// Send sends a desktop notification with the given title and message.
func Send(title, message string) error {
	log := logger.WithComponent("notification")
	log.Debug("sending", "title", title)
	// Empty icon - beeep handles platform defaults
	err := notify(title, message, "")
	if err != nil {
		log.Warn("failed to send notification", "error", err)
	}
	return err
}

// ReplyReceived announces a reply in the named conversation.
func ReplyReceived(conversationTitle, reply string) error {
	title := "parley"
	if conversationTitle != "" {
		title = "parley · " + conversationTitle
	}
	return Send(title, Preview(reply))
}

// Preview flattens a reply to one line and truncates it.
func Preview(reply string) string {
	text := strings.Join(strings.Fields(reply), " ")
	if r := []rune(text); len(r) > maxPreview {
		text = string(r[:maxPreview-1]) + "…"
	}
	return text
}
