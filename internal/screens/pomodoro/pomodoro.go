// Package pomodoro is the focus timer screen.
package pomodoro

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/capsulemed/internal/pomodoro"
	"github.com/abhisek/capsulemed/internal/screen"
	"github.com/abhisek/capsulemed/internal/ui/components"
	"github.com/abhisek/capsulemed/internal/ui/layout"
	"github.com/abhisek/capsulemed/internal/ui/theme"
)

// tickMsg is sent every second by the ticker of generation gen.
type tickMsg struct {
	gen int
}

// PomodoroScreen owns a timer. Leaving the screen drops it, and ticks
// addressed to it are then ignored by whatever screen is active.
type PomodoroScreen struct {
	timer    *pomodoro.Timer
	finished bool
}

var _ screen.Screen = (*PomodoroScreen)(nil)
var _ screen.KeyHintProvider = (*PomodoroScreen)(nil)

// New creates a stopped timer in work mode.
func New(cfg pomodoro.Config) *PomodoroScreen {
	return &PomodoroScreen{timer: pomodoro.New(cfg)}
}

func (s *PomodoroScreen) Init() tea.Cmd {
	return nil
}

func (s *PomodoroScreen) Title() string {
	return "Pomodoro"
}

func (s *PomodoroScreen) KeyHints() []layout.KeyHint {
	start := "Démarrer"
	if s.timer.Running() {
		start = "Pause"
	}
	return []layout.KeyHint{
		{Key: "Espace", Description: start},
		{Key: "r", Description: "Réinitialiser"},
		{Key: "t/p", Description: "Travail/Pause"},
		{Key: "Esc", Description: "Retour"},
	}
}

func (s *PomodoroScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		applied, finished := s.timer.Tick(msg.gen)
		if !applied {
			return s, nil
		}
		if finished {
			s.finished = true
			return s, nil
		}
		return s, tick(msg.gen)

	case tea.KeyMsg:
		switch msg.String() {
		case "space", "enter", "s":
			gen, started := s.timer.Toggle()
			if started {
				s.finished = false
				return s, tick(gen)
			}
		case "r":
			s.timer.Reset()
			s.finished = false
		case "t":
			s.timer.SwitchMode(pomodoro.Work)
			s.finished = false
		case "p":
			s.timer.SwitchMode(pomodoro.Break)
			s.finished = false
		}
	}
	return s, nil
}

func tick(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (s *PomodoroScreen) View(width, height int) string {
	fg := theme.Work
	if s.timer.Mode() == pomodoro.Break {
		fg = theme.Break
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(fg).Bold(true).
		Render(strings.ToUpper(s.timer.Mode().String())))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
		Render(bigDigits(pomodoro.Format(s.timer.Remaining()))))
	b.WriteString("\n\n")
	b.WriteString(components.NewProgressBar("", s.timer.Progress()/100, true, 40).View())
	b.WriteString("\n\n")

	status := "En pause"
	switch {
	case s.finished:
		status = "Session terminée !"
	case s.timer.Running():
		status = "En cours…"
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(status))

	card := components.ArcadeCard(b.String(), 50)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

// digitFont is a three-row seven-segment style font.
var digitFont = map[rune][3]string{
	'0': {"┌─┐", "│ │", "└─┘"},
	'1': {"  ┐", "  │", "  ┴"},
	'2': {"┌─┐", "┌─┘", "└─┘"},
	'3': {"┌─┐", " ─┤", "└─┘"},
	'4': {"┐ ┐", "└─┤", "  ┘"},
	'5': {"┌─┐", "└─┐", "└─┘"},
	'6': {"┌─┐", "├─┐", "└─┘"},
	'7': {"┌─┐", "  │", "  ┘"},
	'8': {"┌─┐", "├─┤", "└─┘"},
	'9': {"┌─┐", "└─┤", "└─┘"},
	':': {" ", "·", "·"},
}

func bigDigits(s string) string {
	var rows [3][]string
	for _, r := range s {
		g, ok := digitFont[r]
		if !ok {
			continue
		}
		for i := range rows {
			rows[i] = append(rows[i], g[i])
		}
	}
	return strings.Join(rows[0], " ") + "\n" + strings.Join(rows[1], " ") + "\n" + strings.Join(rows[2], " ")
}
