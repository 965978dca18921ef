// ABOUTME: Markdown rendering for post bodies using glamour
// ABOUTME: Shared by the TUI post view and the posts show command

package postview

import (
	"strings"

	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

// RenderMarkdown renders content for a terminal of the given width. When tty
// is false the plain notty style is used so output stays free of escapes.
func RenderMarkdown(content string, width int, tty bool) (string, error) {
	if width <= 0 {
		width = 80
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if tty {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(glamourstyles.NoTTYStyle))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	out, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}
