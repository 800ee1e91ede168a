package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Spinner shows that slow work is in progress.
type Spinner interface {
	SetTitle(title string)
	Stop()
}

// NewSpinner starts a spinner on stderr. Headless or colorless sessions
// get one plain line per title instead of an animation.
func NewSpinner(theme *Theme, hm *HeadlessManager, title string) Spinner {
	if hm.IsHeadless() || theme.NoColor || !IsTerminal(os.Stderr) {
		return newPlainSpinner(title, os.Stderr)
	}
	return newInteractiveSpinner(theme, title, os.Stderr)
}

type spinnerTitleMsg string

type spinnerStopMsg struct{}

// spinnerModel is the bubbletea model behind the animated spinner.
type spinnerModel struct {
	spinner spinner.Model
	title   string
	done    bool
}

func newSpinnerModel(theme *Theme, title string) spinnerModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	if !theme.NoColor {
		s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors.Primary))
	}
	return spinnerModel{spinner: s, title: title}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTitleMsg:
		m.title = string(msg)
		return m, nil
	case spinnerStopMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.title + "\n"
}

type interactiveSpinner struct {
	program *tea.Program
	once    sync.Once
}

func newInteractiveSpinner(theme *Theme, title string, w io.Writer) *interactiveSpinner {
	p := tea.NewProgram(newSpinnerModel(theme, title), tea.WithOutput(w), tea.WithInput(nil))
	s := &interactiveSpinner{program: p}
	go func() {
		_, _ = p.Run()
	}()
	return s
}

func (s *interactiveSpinner) SetTitle(title string) {
	s.program.Send(spinnerTitleMsg(title))
}

func (s *interactiveSpinner) Stop() {
	s.once.Do(func() {
		s.program.Send(spinnerStopMsg{})
		s.program.Wait()
	})
}

// plainSpinner prints each title on its own line.
type plainSpinner struct {
	mu     sync.Mutex
	writer io.Writer
}

func newPlainSpinner(title string, w io.Writer) *plainSpinner {
	_, _ = fmt.Fprintf(w, "%s\n", title)
	return &plainSpinner{writer: w}
}

func (s *plainSpinner) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.writer, "%s\n", title)
}

func (s *plainSpinner) Stop() {}
