package changelog

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Preview renders markdown for the terminal. Width <= 0 uses 80 columns.
// Plain disables colors for dumb terminals and pipes.
func Preview(markdown string, width int, plain bool) (string, error) {
	if width <= 0 {
		width = 80
	}
	style := glamour.WithAutoStyle()
	if plain {
		style = glamour.WithStylePath("notty")
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
