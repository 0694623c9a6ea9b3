package ui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const (
	defaultDocWidth = 80
	maxDocWidth     = 100
)

// DocumentWidth is the wrap width for rendered documents: the terminal
// width, capped for readability.
func DocumentWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultDocWidth
	}
	return min(w, maxDocWidth)
}

// RenderMarkdown renders an application document with glamour. Without
// color, or if glamour fails, the markdown is returned as written.
func RenderMarkdown(markdown string) string {
	if !ShouldUseColor() {
		return markdown
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(DocumentWidth()),
	)
	if err != nil {
		return markdown
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
