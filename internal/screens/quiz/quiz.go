// Package quiz runs a multiple-choice quiz, static or generated.
package quiz

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/capsulemed/internal/profile"
	"github.com/abhisek/capsulemed/internal/quiz"
	"github.com/abhisek/capsulemed/internal/router"
	"github.com/abhisek/capsulemed/internal/screen"
	"github.com/abhisek/capsulemed/internal/screens/summary"
	"github.com/abhisek/capsulemed/internal/ui/components"
	"github.com/abhisek/capsulemed/internal/ui/layout"
	"github.com/abhisek/capsulemed/internal/ui/theme"
)

// QuizScreen drives a quiz.Engine.
type QuizScreen struct {
	title    string
	engine   *quiz.Engine
	profiles profile.Store
	mc       components.MultiChoice
	errMsg   string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a quiz screen. profiles is used to record the capsule when
// the quiz is finished and may be nil.
func New(title string, q quiz.Quiz, profiles profile.Store) *QuizScreen {
	s := &QuizScreen{title: title, engine: quiz.NewEngine(q), profiles: profiles}
	if err := s.engine.Start(); err != nil {
		s.errMsg = "Ce quiz ne contient aucune question."
		return s
	}
	s.loadQuestion()
	return s
}

// loadQuestion mirrors the engine's current question into the selector.
func (s *QuizScreen) loadQuestion() {
	q, ok := s.engine.Current()
	if !ok {
		return
	}
	opts := make([]string, len(q.Options))
	correct := -1
	for i, o := range q.Options {
		opts[i] = o.Text
		if correct < 0 && o.IsCorrect {
			correct = i
		}
	}
	s.mc = components.NewMultiChoice(q.Question, opts, correct)
}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.engine.State() == quiz.Submitted {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Suivant"},
			{Key: "Esc", Description: "Abandonner"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓/1-6", Description: "Choisir"},
		{Key: "Enter", Description: "Valider"},
		{Key: "Esc", Description: "Abandonner"},
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || s.errMsg != "" {
		return s, nil
	}

	switch s.engine.State() {
	case quiz.Answering:
		if kmsg.String() == "enter" {
			return s, s.submit()
		}
		s.mc, _ = s.mc.Update(kmsg)
		s.selectCurrent()
		return s, nil

	case quiz.Submitted:
		if kmsg.String() == "enter" || kmsg.String() == "space" {
			return s, s.next()
		}
	}
	return s, nil
}

// selectCurrent forwards the highlighted option to the engine.
func (s *QuizScreen) selectCurrent() {
	q, ok := s.engine.Current()
	if !ok || s.mc.Selected >= len(q.Options) {
		return
	}
	_ = s.engine.Select(q.Options[s.mc.Selected].ID)
}

func (s *QuizScreen) submit() tea.Cmd {
	s.selectCurrent()
	if _, err := s.engine.Submit(); err != nil {
		return nil
	}
	s.mc.Submitted = true
	s.mc.ChosenIndex = s.mc.Selected
	return nil
}

func (s *QuizScreen) next() tea.Cmd {
	more, err := s.engine.Next()
	if err != nil {
		return nil
	}
	if more {
		s.loadQuestion()
		return nil
	}
	done := summary.New(s.title, s.engine.Quiz(), s.engine.Result(), s.profiles)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: done} }
}

func (s *QuizScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.Error).
			Render(s.errMsg)
	}

	cw := max(min(width-10, 70), 20)
	var b strings.Builder

	info := fmt.Sprintf("%s   Question %d/%d   Score %d",
		s.title, s.engine.Index()+1, s.engine.Total(), s.engine.Score())
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(info))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Width(cw).Render(s.mc.View()))

	if ans, ok := s.engine.LastAnswer(); ok {
		b.WriteString("\n")
		if ans.Correct {
			b.WriteString(theme.Correct.Render("Bonne réponse !"))
		} else {
			b.WriteString(theme.Incorrect.Render("Mauvaise réponse."))
		}
		if q, ok := s.engine.Current(); ok && q.Explanation != "" {
			b.WriteString("\n\n")
			b.WriteString(lipgloss.NewStyle().Width(cw).Foreground(theme.TextDim).Italic(true).
				Render(q.Explanation))
		}
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		components.ArcadeCard(b.String(), cw+6))
}
