package mockserver

import (
	"fmt"
	"strings"
)

const codeReply = "Here's a small example:\n\n" +
	"```go\n" +
	"func greet(name string) string {\n" +
	"\treturn fmt.Sprintf(\"Hello, %s!\", name)\n" +
	"}\n" +
	"```\n\n" +
	"Call it with `greet(\"parley\")`."

// CannedReply answers without a model. It recognizes a few keywords so the
// demo can show markdown rendering, and echoes everything else.
func CannedReply(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "code") || strings.Contains(lower, "example"):
		return codeReply
	case strings.Contains(lower, "list") || strings.Contains(lower, "steps"):
		return "Sure, in three steps:\n\n1. **Ask** a question\n2. *Wait* for the reply\n3. Repeat as needed"
	case strings.HasPrefix(lower, "hello") || strings.HasPrefix(lower, "hi"):
		return "Hello! Ask me anything, or attach an image with ctrl+o."
	default:
		return fmt.Sprintf("You said: %q. I'm a demo server, so that's all I can tell you.", strings.TrimSpace(text))
	}
}
