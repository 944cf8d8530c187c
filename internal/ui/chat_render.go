package ui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zhubert/parley/internal/session"
	"github.com/zhubert/parley/internal/store"
)

// Compiled regex patterns for markdown parsing
var (
	boldPattern       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	numberedPattern   = regexp.MustCompile(`^(\d{1,3})\. (.*)$`)
)

// highlightCode applies syntax highlighting to code using chroma
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(CurrentTheme().CodeStyle)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// renderInlineMarkdown applies inline formatting (bold, code, links) to a line
func renderInlineMarkdown(line string) string {
	// Code spans are swapped for placeholders so bold and links never apply inside them
	var spans []string
	line = inlineCodePattern.ReplaceAllStringFunc(line, func(match string) string {
		code := inlineCodePattern.FindStringSubmatch(match)[1]
		spans = append(spans, MarkdownInlineCodeStyle.Render(code))
		return fmt.Sprintf("\x00CODE%d\x00", len(spans)-1)
	})

	line = boldPattern.ReplaceAllStringFunc(line, func(match string) string {
		return MarkdownBoldStyle.Render(boldPattern.FindStringSubmatch(match)[1])
	})

	line = linkPattern.ReplaceAllStringFunc(line, func(match string) string {
		parts := linkPattern.FindStringSubmatch(match)
		return MarkdownLinkStyle.Render(parts[1]) + " (" + MarkdownLinkStyle.Render(parts[2]) + ")"
	})

	for i, rendered := range spans {
		line = strings.Replace(line, fmt.Sprintf("\x00CODE%d\x00", i), rendered, 1)
	}
	return line
}

// wrapText wraps text to the specified width, handling ANSI escape codes
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}

// indentContinuation prefixes every line after the first.
func indentContinuation(text, indent string) string {
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = indent + lines[i]
	}
	return strings.Join(lines, "\n")
}

// renderMarkdownLine renders a single line with markdown formatting
func renderMarkdownLine(line string, width int) string {
	trimmed := strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(trimmed, "### "):
		return MarkdownH3Style.Render(strings.TrimPrefix(trimmed, "### "))
	case strings.HasPrefix(trimmed, "## "):
		return MarkdownH2Style.Render(strings.TrimPrefix(trimmed, "## "))
	case strings.HasPrefix(trimmed, "# "):
		return MarkdownH1Style.Render(strings.TrimPrefix(trimmed, "# "))
	case trimmed == "---" || trimmed == "***" || trimmed == "___":
		return MarkdownHRStyle.Render(strings.Repeat("─", min(width, 32)))
	case strings.HasPrefix(trimmed, "> "):
		return MarkdownBlockquoteStyle.Render(wrapText(renderInlineMarkdown(trimmed[2:]), width-4))
	case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
		bullet := MarkdownListBulletStyle.Render("•")
		wrapped := wrapText(renderInlineMarkdown(trimmed[2:]), width-6)
		return "  " + bullet + " " + indentContinuation(wrapped, "    ")
	}

	if m := numberedPattern.FindStringSubmatch(trimmed); m != nil {
		number := MarkdownListBulletStyle.Render(m[1] + ".")
		wrapped := wrapText(renderInlineMarkdown(m[2]), width-6)
		return "  " + number + " " + indentContinuation(wrapped, strings.Repeat(" ", len(m[1])+4))
	}

	return wrapText(renderInlineMarkdown(line), width)
}

// renderMarkdown renders markdown content with syntax-highlighted code blocks
func renderMarkdown(content string, width int) string {
	if width <= 0 {
		width = DefaultWrapWidth
	}

	var result strings.Builder
	inCodeBlock := false
	codeBlockLang := ""
	var code strings.Builder

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if !inCodeBlock {
				inCodeBlock = true
				codeBlockLang = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "```"))
				code.Reset()
				continue
			}
			inCodeBlock = false
			result.WriteString(highlightCode(code.String(), codeBlockLang))
			result.WriteString("\n")
			continue
		}

		if inCodeBlock {
			if code.Len() > 0 {
				code.WriteString("\n")
			}
			code.WriteString(line)
			continue
		}
		result.WriteString(renderMarkdownLine(line, width))
		result.WriteString("\n")
	}

	// An unterminated fence still shows its code
	if inCodeBlock {
		result.WriteString(highlightCode(code.String(), codeBlockLang))
	}

	return strings.TrimRight(result.String(), "\n")
}

// renderMessage renders one transcript entry: a label line with the time,
// an image marker when the message carried one, and the body.
func renderMessage(msg store.Message, now time.Time, width int) string {
	var sb strings.Builder

	label := ChatAssistantStyle.Render("Assistant")
	if msg.Sender == store.SenderUser {
		label = ChatUserStyle.Render("You")
	}
	sb.WriteString(label)
	if ts := session.FormatMessageTime(msg.TimeStamp, now); ts != "" {
		sb.WriteString(" ")
		sb.WriteString(ChatTimeStyle.Render(ts))
	}
	sb.WriteString("\n")

	if msg.Image != "" {
		sb.WriteString(ChatImageStyle.Render("[image attached]"))
		sb.WriteString("\n")
	}

	if msg.Sender == store.SenderUser {
		// User text is shown as typed, without markdown
		sb.WriteString(wrapText(msg.Text, width))
	} else {
		sb.WriteString(renderMarkdown(strings.TrimSpace(msg.Text), width))
	}
	return sb.String()
}

// renderEmptyState renders the prompt shown for a conversation with no messages.
func renderEmptyState(width int) string {
	title := ChatEmptyTitleStyle.Render("Start a conversation")
	hint := ChatEmptyHintStyle.Render("Send a message or upload an image to begin")

	center := func(s string) string {
		pad := (width - ansi.StringWidth(s)) / 2
		if pad <= 0 {
			return s
		}
		return strings.Repeat(" ", pad) + s
	}
	return "\n" + center(title) + "\n\n" + center(hint)
}

// renderNoConversation renders the placeholder shown when nothing is open.
func renderNoConversation() string {
	var sb strings.Builder
	sb.WriteString(ChatEmptyHintStyle.Render("No conversation open"))
	sb.WriteString("\n\n")
	sb.WriteString(FooterDescStyle.Render("Press "))
	sb.WriteString(FooterKeyStyle.Render("n"))
	sb.WriteString(FooterDescStyle.Render(" in the sidebar to start one"))
	return sb.String()
}
