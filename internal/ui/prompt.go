package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/relman-dev/relman/pkg/models"
)

var (
	// ErrCancelled is returned when the user aborts a prompt.
	ErrCancelled = errors.New("ui: cancelled by user")

	// ErrHeadless is returned when input is required but no terminal is attached.
	ErrHeadless = errors.New("ui: interactive input required but stdin is not a terminal")
)

// Prompter asks the user questions. In headless mode it never blocks.
type Prompter struct {
	theme    *Theme
	headless *HeadlessManager
}

// NewPrompter creates a Prompter.
func NewPrompter(theme *Theme, hm *HeadlessManager) *Prompter {
	return &Prompter{theme: theme, headless: hm}
}

// Confirm asks a yes/no question. Headless sessions get ErrHeadless so
// destructive actions require an explicit --yes.
func (p *Prompter) Confirm(title, description string, def bool) (bool, error) {
	if p.headless.IsHeadless() {
		return false, ErrHeadless
	}
	return p.confirmInteractive(title, description, def)
}

func (p *Prompter) confirmInteractive(title, description string, def bool) (bool, error) {
	answer := def
	field := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&answer)
	if err := p.run(field); err != nil {
		return false, err
	}
	return answer, nil
}

// SelectReleaseType asks for a release type with suggested preselected.
// Headless sessions get suggested back.
func (p *Prompter) SelectReleaseType(suggested models.ReleaseType) (models.ReleaseType, error) {
	if p.headless.IsHeadless() {
		return suggested, nil
	}
	return p.selectInteractive(suggested)
}

func (p *Prompter) selectInteractive(suggested models.ReleaseType) (models.ReleaseType, error) {
	choice := suggested
	opts := make([]huh.Option[models.ReleaseType], 0, 3)
	for _, rt := range models.ValidReleaseTypes() {
		label := string(rt)
		if rt == suggested {
			label += " (suggested)"
		}
		opts = append(opts, huh.NewOption(label, rt))
	}
	field := huh.NewSelect[models.ReleaseType]().
		Title("Release type").
		Options(opts...).
		Value(&choice)
	if err := p.run(field); err != nil {
		return "", err
	}
	return choice, nil
}

func (p *Prompter) run(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).WithTheme(p.formTheme())
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrCancelled
		}
		return fmt.Errorf("prompt: %w", err)
	}
	return nil
}

func (p *Prompter) formTheme() *huh.Theme {
	t := huh.ThemeBase()
	if p.theme.NoColor {
		return t
	}
	primary := lipgloss.Color(p.theme.Colors.Primary)
	muted := lipgloss.Color(p.theme.Colors.Muted)
	success := lipgloss.Color(p.theme.Colors.Success)

	t.Focused.Title = t.Focused.Title.Foreground(primary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(muted)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(primary).SetString("\u25b8 ")
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(success)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Foreground(lipgloss.Color("#FFFFFF")).Background(primary)
	t.Blurred = t.Focused
	return t
}
