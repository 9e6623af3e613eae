// Package lesson is the capsule viewer: metadata, video link, tutor chat
// and the capsule's quiz.
package lesson

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/capsulemed/internal/catalog"
	"github.com/abhisek/capsulemed/internal/chat"
	"github.com/abhisek/capsulemed/internal/profile"
	"github.com/abhisek/capsulemed/internal/router"
	"github.com/abhisek/capsulemed/internal/screen"
	"github.com/abhisek/capsulemed/internal/screens/chatpanel"
	"github.com/abhisek/capsulemed/internal/screens/deps"
	quizscreen "github.com/abhisek/capsulemed/internal/screens/quiz"
	"github.com/abhisek/capsulemed/internal/ui/components"
	"github.com/abhisek/capsulemed/internal/ui/layout"
	"github.com/abhisek/capsulemed/internal/ui/theme"
)

type watchedMsg struct {
	added   bool
	profile *profile.Profile
	err     error
}

type profileLoadedMsg struct {
	profile *profile.Profile
}

// LessonScreen shows one capsule.
type LessonScreen struct {
	deps    *deps.Deps
	capsule catalog.Capsule
	chat    *chatpanel.Panel
	focus   bool
	watched bool
	status  string
	failed  bool
}

var (
	_ screen.Screen          = (*LessonScreen)(nil)
	_ screen.KeyHintProvider = (*LessonScreen)(nil)
	_ screen.ChromeHider     = (*LessonScreen)(nil)
	_ screen.InputCapturer   = (*LessonScreen)(nil)
)

// New creates a lesson screen for c.
func New(d *deps.Deps, c catalog.Capsule) *LessonScreen {
	return &LessonScreen{
		deps:    d,
		capsule: c,
		chat:    chatpanel.New(d.Tutor, chat.LessonGreeting(c)),
	}
}

func (s *LessonScreen) Init() tea.Cmd {
	d := s.deps
	return func() tea.Msg {
		return profileLoadedMsg{profile: d.CurrentProfile(context.Background())}
	}
}

func (s *LessonScreen) Title() string {
	return s.capsule.Title
}

// HideChrome reports focus mode.
func (s *LessonScreen) HideChrome() bool { return s.focus }

// CapturingInput reports whether the chat field has the keyboard.
func (s *LessonScreen) CapturingInput() bool { return s.chat.Focused() }

func (s *LessonScreen) KeyHints() []layout.KeyHint {
	if s.chat.Focused() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Envoyer"},
			{Key: "Esc", Description: "Fermer le chat"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "c", Description: "Chat"},
		{Key: "w", Description: "Marquer vue"},
	}
	if _, ok := s.deps.Catalog.QuizFor(s.capsule.ID); ok {
		hints = append(hints, layout.KeyHint{Key: "q", Description: "Quiz"})
	}
	return append(hints,
		layout.KeyHint{Key: "f", Description: "Focus"},
		layout.KeyHint{Key: "Esc", Description: "Retour"},
	)
}

func (s *LessonScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if cmd, handled := s.chat.Update(msg, chat.Lesson{Capsule: s.capsule}); handled {
		return s, cmd
	}

	switch msg := msg.(type) {
	case profileLoadedMsg:
		s.watched = msg.profile.HasCompleted(s.capsule.ID)
		return s, nil

	case screen.ProfileChangedMsg:
		s.watched = msg.Profile.HasCompleted(s.capsule.ID)
		return s, nil

	case watchedMsg:
		return s, s.handleWatched(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "f":
			s.focus = !s.focus
		case "c":
			if !s.focus {
				return s, s.chat.Focus()
			}
		case "w":
			return s, s.markWatched()
		case "q":
			return s, s.openQuiz()
		}
	}
	return s, nil
}

func (s *LessonScreen) markWatched() tea.Cmd {
	if s.deps.Profiles == nil {
		s.status, s.failed = profile.Message(profile.ErrNotSignedIn), true
		return nil
	}
	profiles, id := s.deps.Profiles, s.capsule.ID
	return func() tea.Msg {
		ctx := context.Background()
		added, err := profiles.MarkCompleted(ctx, id)
		if err != nil {
			return watchedMsg{err: err}
		}
		p, err := profiles.Current(ctx)
		return watchedMsg{added: added, profile: p, err: err}
	}
}

func (s *LessonScreen) handleWatched(msg watchedMsg) tea.Cmd {
	if msg.err != nil {
		s.status, s.failed = profile.Message(msg.err), true
		if !errors.Is(msg.err, profile.ErrNotSignedIn) {
			s.deps.Log.Warn("mark capsule watched", "capsule", s.capsule.ID, "error", msg.err)
		}
		return nil
	}
	s.watched, s.failed = true, false
	s.status = "Capsule marquée comme vue."
	if !msg.added {
		s.status = "Capsule déjà validée."
	}
	p := msg.profile
	return func() tea.Msg { return screen.ProfileChangedMsg{Profile: p} }
}

func (s *LessonScreen) openQuiz() tea.Cmd {
	q, ok := s.deps.Catalog.QuizFor(s.capsule.ID)
	if !ok {
		s.status, s.failed = "Pas encore de quiz pour cette capsule.", false
		return nil
	}
	qs := quizscreen.New(s.capsule.Title, q, s.deps.Profiles)
	return func() tea.Msg { return router.PushScreenMsg{Screen: qs} }
}

func (s *LessonScreen) View(width, height int) string {
	if s.focus {
		card := components.ArcadeCard(s.renderPlayer(width-10), width-4)
		hint := lipgloss.NewStyle().Foreground(theme.TextDim).Render("f : quitter le mode focus")
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center, card, "", hint))
	}

	leftW := width * 3 / 5
	rightW := width - leftW - 1

	left := s.renderPlayer(leftW-2) + "\n\n" + s.renderDetails(leftW-2)
	left = lipgloss.NewStyle().Width(leftW).Height(height).Padding(0, 1).Render(left)

	right := lipgloss.NewStyle().
		Width(rightW).
		Height(height).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(theme.Border).
		Padding(0, 1).
		Render(s.chat.View(rightW-3, height))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// renderPlayer stands in for the video element: the link and duration.
func (s *LessonScreen) renderPlayer(width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Width(width).Render(s.capsule.Title))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s › %s   ⏱ %s", s.capsule.Subject, s.capsule.Theme, s.capsule.Duration)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Info).Underline(true).Render("▶ " + s.capsule.VideoURL))
	return b.String()
}

func (s *LessonScreen) renderDetails(width int) string {
	var b strings.Builder
	if s.capsule.Description != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Width(width).Render(s.capsule.Description))
		b.WriteString("\n\n")
	}
	if s.watched {
		b.WriteString(theme.Correct.Render("✔ Capsule validée"))
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("○ Pas encore validée"))
	}
	if s.status != "" {
		fg := theme.Success
		if s.failed {
			fg = theme.Error
		}
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(fg).Width(width).Render(s.status))
	}
	return b.String()
}
