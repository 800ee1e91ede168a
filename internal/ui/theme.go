// Package ui holds the terminal presentation layer: colors, cards,
// spinners and interactive prompts. Every component degrades to plain
// output when stdin is not a terminal or colors are disabled.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette names the colors used across the CLI.
type Palette struct {
	Primary string
	Success string
	Warning string
	Error   string
	Muted   string
	Border  string
}

// ThemeConfig configures NewTheme.
type ThemeConfig struct {
	NoColor bool
}

// Theme carries the palette and derived styles.
type Theme struct {
	NoColor bool
	Colors  Palette
}

// NewTheme returns the default relman theme.
func NewTheme(cfg ThemeConfig) *Theme {
	return &Theme{
		NoColor: cfg.NoColor,
		Colors: Palette{
			Primary: "#7C3AED",
			Success: "#10B981",
			Warning: "#F59E0B",
			Error:   "#EF4444",
			Muted:   "#9CA3AF",
			Border:  "#4B5563",
		},
	}
}

func (t *Theme) style(color string) lipgloss.Style {
	if t.NoColor {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Primary styles headings.
func (t *Theme) Primary(s string) string { return t.style(t.Colors.Primary).Bold(!t.NoColor).Render(s) }

// Success styles positive outcomes.
func (t *Theme) Success(s string) string { return t.style(t.Colors.Success).Render(s) }

// Warning styles warnings.
func (t *Theme) Warning(s string) string { return t.style(t.Colors.Warning).Render(s) }

// Error styles failures.
func (t *Theme) Error(s string) string { return t.style(t.Colors.Error).Render(s) }

// Muted styles secondary text.
func (t *Theme) Muted(s string) string { return t.style(t.Colors.Muted).Render(s) }

func (t *Theme) cardStyle() lipgloss.Style {
	s := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	if !t.NoColor {
		s = s.BorderForeground(lipgloss.Color(t.Colors.Border))
	}
	return s
}

// SuccessCard renders a bordered card with a check mark title and detail lines.
func (t *Theme) SuccessCard(title string, details ...string) string {
	return t.card(t.Success("\u2713")+" "+title, details)
}

// WarningCard renders a bordered card listing warnings.
func (t *Theme) WarningCard(title string, details ...string) string {
	return t.card(t.Warning("!")+" "+title, details)
}

// InfoCard renders a bordered card with a bold title and free-form content.
func (t *Theme) InfoCard(title, content string) string {
	return t.card(t.Primary(title), []string{content})
}

func (t *Theme) card(titleLine string, details []string) string {
	var body strings.Builder
	body.WriteString(titleLine)
	if len(details) > 0 {
		body.WriteString("\n\n")
		body.WriteString(strings.Join(details, "\n"))
	}
	return t.cardStyle().Render(body.String())
}
