package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a markdown-to-terminal render function for
// assistant replies. It falls back to raw text when no renderer can be
// constructed (e.g. output is not a terminal).
func NewRenderer() func(string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) string { return markdown }
	}
	return func(markdown string) string {
		out, rerr := r.Render(markdown)
		if rerr != nil {
			return markdown
		}
		return out
	}
}
