// Package summary shows the result of a finished quiz and records the
// capsule as completed.
package summary

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/capsulemed/internal/profile"
	"github.com/abhisek/capsulemed/internal/quiz"
	"github.com/abhisek/capsulemed/internal/router"
	"github.com/abhisek/capsulemed/internal/screen"
	"github.com/abhisek/capsulemed/internal/ui/components"
	"github.com/abhisek/capsulemed/internal/ui/layout"
	"github.com/abhisek/capsulemed/internal/ui/theme"
)

type completionMsg struct {
	added   bool
	profile *profile.Profile
	err     error
}

// SummaryScreen displays a finished quiz.
type SummaryScreen struct {
	title    string
	quiz     quiz.Quiz
	result   quiz.Result
	profiles profile.Store

	completion string
	complErr   bool
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen. profiles may be nil; quizzes without a
// capsule (generated from a document) are never recorded.
func New(title string, q quiz.Quiz, result quiz.Result, profiles profile.Store) *SummaryScreen {
	return &SummaryScreen{title: title, quiz: q, result: result, profiles: profiles}
}

func (s *SummaryScreen) Init() tea.Cmd {
	if s.quiz.CapsuleID <= 0 || s.profiles == nil {
		return nil
	}
	profiles, id := s.profiles, s.quiz.CapsuleID
	return func() tea.Msg {
		ctx := context.Background()
		added, err := profiles.MarkCompleted(ctx, id)
		if err != nil {
			return completionMsg{err: err}
		}
		p, err := profiles.Current(ctx)
		return completionMsg{added: added, profile: p, err: err}
	}
}

func (s *SummaryScreen) Title() string {
	return "Résultat du quiz"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continuer"},
		{Key: "Esc", Description: "Retour"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case completionMsg:
		switch {
		case errors.Is(msg.err, profile.ErrNotSignedIn):
			s.completion = profile.Message(msg.err)
		case msg.err != nil:
			s.completion = "Progression non enregistrée : " + profile.Message(msg.err)
			s.complErr = true
		case msg.added:
			s.completion = "Capsule validée ✔"
		default:
			s.completion = "Capsule déjà validée"
		}
		if msg.err == nil {
			p := msg.profile
			return s, func() tea.Msg { return screen.ProfileChangedMsg{Profile: p} }
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	res := s.result
	var b strings.Builder

	// Title.
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Quiz terminé !"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(s.title))
	b.WriteString("\n\n")

	// Score line.
	pct := 0.0
	if res.Total > 0 {
		pct = float64(res.Score) / float64(res.Total)
	}
	statsLine := fmt.Sprintf("Score : %d/%d        Réussite : %.0f%%", res.Score, res.Total, pct*100)
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(scoreColor(pct)).
		Bold(true).
		Render(statsLine))
	b.WriteString("\n\n")

	barWidth := min(width-8, 50)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		components.NewProgressBar("", pct, true, barWidth).View()))
	b.WriteString("\n\n")

	// Questions divider.
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Questions")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	for i, a := range res.Answers {
		mark, style := "✗", theme.Incorrect
		if a.Correct {
			mark, style = "✓", theme.Correct
		}
		text := ""
		if i < len(s.quiz.Questions) {
			text = s.quiz.Questions[i].Question
		}
		line := fmt.Sprintf("  %s  %d. %s", mark, i+1, clip(text, min(width-12, 70)))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	if s.completion != "" {
		fg := theme.Success
		if s.complErr {
			fg = theme.Error
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(fg).
			Render(s.completion))
	}

	return b.String()
}

// scoreColor returns green from 70%, orange from 40%, rose below.
func scoreColor(pct float64) color.Color {
	switch {
	case pct >= 0.7:
		return theme.Success
	case pct >= 0.4:
		return theme.Accent
	default:
		return theme.Error
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if n < 2 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
