package ui

import (
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders markdown for the terminal. Without a TTY the
// notty style is used so the output stays plain.
func RenderMarkdown(content string, width int) (string, error) {
	opts := []glamour.TermRendererOption{}
	if isTTY {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}

	return renderer.Render(content)
}
