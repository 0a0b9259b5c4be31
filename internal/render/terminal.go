package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/cli/go-gh/v2/pkg/markdown"

	"github.com/plumekit/plume/internal/client"
	"github.com/plumekit/plume/internal/stream"
)

// TerminalRenderer prints a stream of generation snapshots to the
// terminal, optionally rendering markdown as complete paragraphs arrive.
type TerminalRenderer struct {
	markdown  *glamour.TermRenderer
	plainText bool
	buffer    strings.Builder
	seen      int
}

// NewTerminalRenderer creates a renderer. With usePlainText set, content
// is echoed verbatim instead of being styled.
func NewTerminalRenderer(wrap int, usePlainText bool) *TerminalRenderer {
	var md *glamour.TermRenderer
	if !usePlainText {
		md, _ = glamour.NewTermRenderer(
			markdown.WithWrap(wrap),
			glamour.WithAutoStyle(),
		)
	}

	return &TerminalRenderer{
		markdown:  md,
		plainText: usePlainText,
	}
}

// Render consumes generation snapshots until the channel closes. Each
// snapshot supersedes the previous one, so only the text beyond what has
// already been taken is rendered.
func (t *TerminalRenderer) Render(results <-chan stream.Result[*client.Generation]) error {
	for r := range results {
		if r.Err != nil {
			return fmt.Errorf("stream error: %w", r.Err)
		}

		t.advance(r.Value.Text)
		content := t.buffer.String()

		if idx := findMarkdownBreakPoint(content); idx > 0 {
			if err := t.renderContent(content[:idx]); err != nil {
				return err
			}
			// Reset buffer with remaining content
			remaining := content[idx:]
			t.buffer.Reset()
			t.buffer.WriteString(remaining)
		}
	}

	// Render any remaining content
	if remaining := t.buffer.String(); remaining != "" {
		if err := t.renderContent(remaining); err != nil {
			return err
		}
	}

	fmt.Println()
	return nil
}

// advance moves the unseen part of a snapshot into the pending buffer. A
// snapshot shorter than what was already taken starts a fresh text.
func (t *TerminalRenderer) advance(text string) {
	if len(text) < t.seen {
		t.seen = 0
	}
	t.buffer.WriteString(text[t.seen:])
	t.seen = len(text)
}

func (t *TerminalRenderer) renderContent(content string) error {
	if t.plainText {
		fmt.Print(content)
		return nil
	}

	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "#") {
		fmt.Println()
	}

	mdContent, err := t.markdown.Render(content)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	fmt.Println(strings.TrimSpace(mdContent))
	return nil
}

func findMarkdownBreakPoint(content string) int {
	const marker string = "\n\n"
	lastBreak := -1
	idx := strings.LastIndex(content, marker)
	if idx > lastBreak {
		lastBreak = idx + len(marker)
	}
	return lastBreak
}
